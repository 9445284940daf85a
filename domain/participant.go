// Package domain contains core concepts of the call-presence system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

// ActorType distinguishes the kind of identity behind a participant.
type ActorType string

const (
	ActorUsers          ActorType = "users"
	ActorGuests         ActorType = "guests"
	ActorFederatedUsers ActorType = "federated_users"
)

// ParticipantType encodes the role of a participant inside a conversation.
type ParticipantType int

const (
	ParticipantOwner          ParticipantType = 1
	ParticipantModerator      ParticipantType = 2
	ParticipantUser           ParticipantType = 3
	ParticipantGuest          ParticipantType = 4
	ParticipantUserSelfJoined ParticipantType = 5
	ParticipantGuestModerator ParticipantType = 6
)

// Call connection flags. A participant is disconnected from the call
// when the whole bitmask equals CallFlagDisconnected.
const (
	CallFlagDisconnected = 0
	CallFlagInCall       = 1
	CallFlagWithAudio    = 2
	CallFlagWithVideo    = 4
	CallFlagWithPhone    = 8
)

// Participant permission flags.
const (
	PermissionsDefault       = 0
	PermissionsCustom        = 1
	PermissionsCallStart     = 2
	PermissionsCallJoin      = 4
	PermissionsLobbyIgnore   = 8
	PermissionsPublishAudio  = 16
	PermissionsPublishVideo  = 32
	PermissionsPublishScreen = 64
)

// Participant is a durable conversation member, owned by the roster.
// It is distinct from a Session: one participant may be connected through
// several devices at once, so SessionIDs holds room-session identifiers,
// not signaling session identifiers.
type Participant struct {
	AttendeeID      int64
	ActorType       ActorType
	ActorID         string
	DisplayName     string
	ParticipantType ParticipantType
	SessionIDs      []string
	InCall          int
	Permissions     int
	LastPing        int64
}

// ParticipantUpdate is a partial-field merge command sent to the roster.
// Nil fields are left unchanged by the roster; non-nil fields overwrite.
type ParticipantUpdate struct {
	SessionIDs      *[]string
	InCall          *int
	DisplayName     *string
	ParticipantType *ParticipantType
	Permissions     *int
	LastPing        *int64
}
