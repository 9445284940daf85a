// Package signaling defines the payload variants emitted by the two
// signaling backends and the classification of raw batches into them.
// Payloads are read-only inputs; no state lives here.
package signaling

import (
	"presence-lab/domain"
)

// Kind tags the three payload shapes produced by the signaling backends.
type Kind int

const (
	// KindInternal is a full-snapshot entry from the internal signaling
	// backend. A batch of this kind lists the complete set of live
	// sessions for the conversation.
	KindInternal Kind = iota + 1
	// KindStandaloneJoin is an incremental join event from the standalone
	// signaling backend.
	KindStandaloneJoin
	// KindStandaloneUpdate is an incremental state update from the
	// standalone signaling backend.
	KindStandaloneUpdate
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindStandaloneJoin:
		return "standalone-join"
	case KindStandaloneUpdate:
		return "standalone-update"
	default:
		return "unknown"
	}
}

// Payload is the tagged union over the three signaling shapes.
// Implementations expose the identifiers the registry correlates on.
type Payload interface {
	Kind() Kind
	// SignalingSessionID is the ephemeral per-connection identifier
	// assigned by the backend that produced the payload.
	SignalingSessionID() string
	// RoomSessionID is the secondary identifier used to match the
	// session against the participant roster.
	RoomSessionID() string
}

// InternalSession is one entry of an internal-signaling snapshot.
// The shape is recognized by the presence of the roomId field.
// Its sessionId serves both as signaling session id and room-session id.
type InternalSession struct {
	SessionID   string           `json:"sessionId" validate:"required"`
	RoomID      int64            `json:"roomId" validate:"required"`
	UserID      string           `json:"userId"`
	ActorID     string           `json:"actorId"`
	ActorType   domain.ActorType `json:"actorType"`
	InCall      int              `json:"inCall"`
	LastPing    int64            `json:"lastPing"`
	Permissions int              `json:"participantPermissions"`
}

func (p InternalSession) Kind() Kind                 { return KindInternal }
func (p InternalSession) SignalingSessionID() string { return p.SessionID }
func (p InternalSession) RoomSessionID() string      { return p.SessionID }

// JoinUser carries the optional user block of a standalone join event.
type JoinUser struct {
	DisplayName string `json:"displayname"`
}

// StandaloneJoin is an incremental join event. The shape is recognized by
// its lower-case sessionid field, a naming convention of the standalone
// protocol that distinguishes it from the camel-case shapes.
type StandaloneJoin struct {
	SessionID   string    `json:"sessionid" validate:"required"`
	RoomSession string    `json:"roomsessionid"`
	UserID      string    `json:"userid"`
	User        *JoinUser `json:"user,omitempty"`
	Federated   bool      `json:"federated,omitempty"`
}

func (p StandaloneJoin) Kind() Kind                 { return KindStandaloneJoin }
func (p StandaloneJoin) SignalingSessionID() string { return p.SessionID }
func (p StandaloneJoin) RoomSessionID() string      { return p.RoomSession }

// StandaloneUpdate is an incremental participant-state update. The shape is
// recognized by the presence of sessionId together with the absence of
// roomId.
type StandaloneUpdate struct {
	SessionID       string                 `json:"sessionId" validate:"required"`
	UserID          string                 `json:"userId"`
	InCall          int                    `json:"inCall"`
	ParticipantType domain.ParticipantType `json:"participantType"`
	LastPing        int64                  `json:"lastPing"`
	Permissions     int                    `json:"participantPermissions"`
	DisplayName     *string                `json:"displayName,omitempty"`
}

func (p StandaloneUpdate) Kind() Kind                 { return KindStandaloneUpdate }
func (p StandaloneUpdate) SignalingSessionID() string { return p.SessionID }
func (p StandaloneUpdate) RoomSessionID() string      { return p.SessionID }
