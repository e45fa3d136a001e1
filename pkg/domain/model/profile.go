package model

import "time"

// ProfileID represents a unique identifier for a Slack user
type ProfileID string

const unknownName = "Unknown"

// Profile represents normalized user metadata held in the profile cache.
// Optional fields are nil when the remote source did not provide them.
type Profile struct {
	ID          ProfileID `json:"id"`
	Name        string    `json:"name"`
	RealName    string    `json:"real_name"`
	DisplayName string    `json:"display_name"`
	Email       *string   `json:"email"`
	AvatarURL   *string   `json:"avatar"`
	IsBot       bool      `json:"is_bot"`
	IsAdmin     bool      `json:"is_admin"`
	TeamID      *string   `json:"team_id"`
	UpdatedAt   time.Time `json:"-"` // Last resolved from Slack
}

// ProfileSource carries the raw user attributes as delivered by Slack,
// before fallback normalization. Empty strings mean the field was absent.
type ProfileSource struct {
	ID          string
	Name        string
	RealName    string
	DisplayName string
	Email       string
	AvatarURL   string
	IsBot       bool
	IsAdmin     bool
	TeamID      string
}

// NewProfile builds a Profile from raw Slack user attributes, applying
// the documented fallbacks: display_name falls back to real_name,
// email/avatar/team_id fall back to nil.
func NewProfile(src ProfileSource, now time.Time) *Profile {
	displayName := src.DisplayName
	if displayName == "" {
		displayName = src.RealName
	}

	return &Profile{
		ID:          ProfileID(src.ID),
		Name:        src.Name,
		RealName:    src.RealName,
		DisplayName: displayName,
		Email:       optional(src.Email),
		AvatarURL:   optional(src.AvatarURL),
		IsBot:       src.IsBot,
		IsAdmin:     src.IsAdmin,
		TeamID:      optional(src.TeamID),
		UpdatedAt:   now,
	}
}

// PlaceholderProfile returns the degraded profile used when a user
// cannot be resolved: name fields are "Unknown", optional fields nil.
func PlaceholderProfile(id ProfileID) *Profile {
	return &Profile{
		ID:          id,
		Name:        unknownName,
		RealName:    unknownName,
		DisplayName: unknownName,
	}
}

// DisplayLabel returns the best human-readable name for the user,
// preferring DisplayName over RealName over Name over the raw ID.
func (p *Profile) DisplayLabel() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.RealName != "" {
		return p.RealName
	}
	if p.Name != "" {
		return p.Name
	}
	return string(p.ID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ProfileSyncMetadata tracks the health of the background profile sync
type ProfileSyncMetadata struct {
	LastRefreshSuccess time.Time // Last successful refresh time
	LastRefreshAttempt time.Time // Last refresh attempt time (success or failure)
	ProfileCount       int       // Number of profiles at last successful refresh
}
