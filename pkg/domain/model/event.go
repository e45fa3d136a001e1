package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// EventKind tags the closed set of webhook event variants this service
// understands. Anything else decodes to KindUnknown and is acknowledged
// without action.
type EventKind string

const (
	KindURLVerification EventKind = "url_verification"
	KindMessage         EventKind = "message"
	KindMemberJoined    EventKind = "member_joined_channel"
	KindUserChange      EventKind = "user_change"
	KindUnknown         EventKind = "unknown"
)

// Event is a tagged variant over the known webhook event kinds. Exactly
// one of the payload pointers is non-nil, matching Kind.
type Event struct {
	Kind         EventKind
	Challenge    string
	Message      *MessageEvent
	MemberJoined *MemberJoinedEvent
	UserChange   *UserChangeEvent
}

// MessageEvent carries the fields of a channel message notification.
// SubType is non-empty for edits, deletes and system messages.
type MessageEvent struct {
	Channel   string `json:"channel"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"ts"`
	SubType   string `json:"subtype"`
}

// MemberJoinedEvent carries a channel join notification
type MemberJoinedEvent struct {
	User    string `json:"user"`
	Channel string `json:"channel"`
}

// UserChangeEvent carries the full updated profile pushed by Slack
type UserChangeEvent struct {
	User UserPayload `json:"user"`
}

// UserPayload mirrors the user object embedded in user_change events
type UserPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	IsBot    bool   `json:"is_bot"`
	IsAdmin  bool   `json:"is_admin"`
	TeamID   string `json:"team_id"`
	Profile  struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
		Image192    string `json:"image_192"`
	} `json:"profile"`
}

// Source converts the payload into raw profile attributes
func (u *UserPayload) Source() ProfileSource {
	return ProfileSource{
		ID:          u.ID,
		Name:        u.Name,
		RealName:    u.RealName,
		DisplayName: u.Profile.DisplayName,
		Email:       u.Profile.Email,
		AvatarURL:   u.Profile.Image192,
		IsBot:       u.IsBot,
		IsAdmin:     u.IsAdmin,
		TeamID:      u.TeamID,
	}
}

type eventEnvelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	Event     json.RawMessage `json:"event"`
}

// ParseEvent decodes a webhook request body into an Event. The outer
// envelope is {type, challenge?, event?}; inner events are dispatched on
// their own type tag. Unrecognized outer or inner types yield
// KindUnknown, never an error, so new Slack event types cannot break
// delivery.
func ParseEvent(body []byte) (*Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, goerr.Wrap(err, "failed to decode event envelope")
	}

	switch env.Type {
	case "url_verification":
		return &Event{Kind: KindURLVerification, Challenge: env.Challenge}, nil

	case "event_callback":
		if len(env.Event) == 0 {
			return &Event{Kind: KindUnknown}, nil
		}
		return parseInnerEvent(env.Event)

	default:
		return &Event{Kind: KindUnknown}, nil
	}
}

func parseInnerEvent(raw json.RawMessage) (*Event, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, goerr.Wrap(err, "failed to decode inner event")
	}

	switch tag.Type {
	case "message":
		var ev MessageEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, goerr.Wrap(err, "failed to decode message event")
		}
		return &Event{Kind: KindMessage, Message: &ev}, nil

	case "member_joined_channel":
		var ev MemberJoinedEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, goerr.Wrap(err, "failed to decode member_joined_channel event")
		}
		return &Event{Kind: KindMemberJoined, MemberJoined: &ev}, nil

	case "user_change":
		var ev UserChangeEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user_change event")
		}
		return &Event{Kind: KindUserChange, UserChange: &ev}, nil

	default:
		return &Event{Kind: KindUnknown}, nil
	}
}
