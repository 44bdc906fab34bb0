package identity

import (
	"errors"

	"family-drive-go/internal/domain/drive"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Actor is what the auth provider tells us about the caller.
type Actor struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// User is the resolved caller with its family facts.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	FamilyID  string `json:"family_id,omitempty"`
	Role      string `json:"role,omitempty"`
}

func (u User) HasFamily() bool {
	return u.FamilyID != ""
}

func (u User) DriveActor() drive.Actor {
	return drive.Actor{UserID: u.ID, FamilyID: u.FamilyID, Role: u.Role}
}
