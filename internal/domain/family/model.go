package family

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

type Family struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Code      string    `gorm:"size:6;not null;uniqueIndex"`
	OwnerID   string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type FamilyMember struct {
	FamilyID string    `gorm:"type:uuid;primaryKey"`
	UserID   string    `gorm:"primaryKey;uniqueIndex"`
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// FamilyMemberProfile is a membership row joined with the member's profile.
type FamilyMemberProfile struct {
	UserID      string
	Role        string
	JoinedAt    time.Time
	DisplayName *string
	Email       *string
	AvatarURL   *string
}

func (m FamilyMemberProfile) Name() string {
	if m.DisplayName != nil && *m.DisplayName != "" {
		return *m.DisplayName
	}
	if m.Email != nil && *m.Email != "" {
		return *m.Email
	}
	return m.UserID
}

// Membership is the family fact every drive call consumes.
type Membership struct {
	FamilyID string `json:"family_id"`
	Role     string `json:"role"`
}
