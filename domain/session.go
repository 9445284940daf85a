// Package domain contains core concepts of the call-presence system.
// This file defines the Session entity tracked by the registry.
package domain

// Session represents one live connection to a signaling backend.
//
// SignalingSessionID is the primary key and is unique across the registry.
// SessionID is a secondary, protocol-specific room-session identifier used
// to correlate the session with the participant roster; it may differ in
// format from SignalingSessionID depending on the source protocol.
//
// AttendeeID is resolved once, at creation time. A nil AttendeeID marks an
// orphan: the session exists but no matching participant could be found.
// The identity fields are fixed at creation and never mutated afterwards.
type Session struct {
	SignalingSessionID string
	SessionID          string
	Token              string
	AttendeeID         *int64
}

// Orphan reports whether the session could not be attributed to any
// participant when it was registered.
func (s *Session) Orphan() bool {
	return s.AttendeeID == nil
}
