package user

import "time"

// Profile holds the display fields copied from the identity provider.
type Profile struct {
	UserID      string    `gorm:"primaryKey"`
	DisplayName *string   `gorm:"type:text"`
	Email       *string   `gorm:"type:text"`
	AvatarURL   *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "user_profiles"
}

// Name returns the best available label for the user.
func (p *Profile) Name() string {
	if p == nil {
		return ""
	}
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	if p.Email != nil && *p.Email != "" {
		return *p.Email
	}
	return p.UserID
}
