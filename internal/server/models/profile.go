// Package models defines server-side data models persisted in the database.
package models

import "time"

// Profile is the per-user record created on first login. ID is assigned by
// the identity provider and never generated here.
type Profile struct {
	ID                string    `json:"id"`
	Email             *string   `json:"email,omitempty"`
	Username          *string   `json:"username,omitempty"`
	TutorialCompleted bool      `json:"tutorialCompleted"`
	AvatarKey         *string   `json:"avatarKey,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// DisplayName returns the username, or fallback when it is unset or blank.
func (p *Profile) DisplayName(fallback string) string {
	if p == nil || p.Username == nil || *p.Username == "" {
		return fallback
	}
	return *p.Username
}
