// Package presence owns the session registry and the reconciliation engine
// that keep the signaling-session to participant mapping consistent.
// It never persists anything; state is rebuilt from signaling traffic.
package presence

import (
	"log/slog"

	"github.com/samber/lo"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/signaling"
	"presence-lab/errors"
)

// Registry maps signaling session ids to Session records and resolves new
// sessions against the participant roster.
//
// Registry is NOT safe for concurrent use: signaling batches are delivered
// serially by the event-dispatch layer and each batch runs to completion,
// so there is no concurrent mutation to guard against. Hosts that break
// that delivery contract must add their own synchronization.
type Registry struct {
	log      *slog.Logger
	roster   contract.ParticipantStore
	sessions map[string]*domain.Session
}

func NewRegistry(log *slog.Logger, roster contract.ParticipantStore) *Registry {
	return &Registry{
		log:      log,
		roster:   roster,
		sessions: make(map[string]*domain.Session),
	}
}

// GetSession returns the session registered under signalingSessionID.
// A falsy id or an unknown id yields ok=false; no side effects.
func (r *Registry) GetSession(signalingSessionID string) (*domain.Session, bool) {
	if signalingSessionID == "" {
		return nil, false
	}
	s, ok := r.sessions[signalingSessionID]
	return s, ok
}

// AddSession inserts the session unconditionally, overwriting any prior
// record stored under the same signaling session id.
func (r *Registry) AddSession(session *domain.Session) *domain.Session {
	r.sessions[session.SignalingSessionID] = session
	return session
}

// DeleteSession removes the record; no-op when absent. It never cascades
// into the roster — participant-side cleanup is the caller's concern.
func (r *Registry) DeleteSession(signalingSessionID string) {
	if _, ok := r.sessions[signalingSessionID]; !ok {
		return
	}
	delete(r.sessions, signalingSessionID)
	r.log.Debug("deleted session", "signalingSessionId", signalingSessionID)
}

// Sessions returns a snapshot of all registered sessions.
func (r *Registry) Sessions() []*domain.Session {
	return lo.Values(r.sessions)
}

// FindOrCreateSession returns the session registered for the payload's
// signaling session id, creating it on first observation.
//
// Creation resolves the session's attendee once, by querying the roster
// with the room-session id and the actor identity derived from the payload
// shape. When no participant matches, the session is still registered as
// an orphan (nil AttendeeID) and is never re-resolved afterwards.
//
// Repeated observations of the same id are idempotent: the existing record
// is returned unchanged, never duplicated or mutated.
func (r *Registry) FindOrCreateSession(token string, payload signaling.Payload) (*domain.Session, error) {
	signalingSessionID := payload.SignalingSessionID()
	if signalingSessionID == "" {
		// A payload without an id cannot be correlated to anything.
		// This is a protocol-contract violation, not a runtime condition.
		return nil, errors.ErrMissingSessionID
	}

	if session, ok := r.sessions[signalingSessionID]; ok {
		return session, nil
	}

	actorID, actorType := actorIdentity(payload)

	var attendeeID *int64
	query := contract.FindQuery{
		SessionID: payload.RoomSessionID(),
		ActorID:   actorID,
		ActorType: actorType,
	}
	if participant, found := r.roster.FindParticipant(token, query); found {
		attendeeID = lo.ToPtr(participant.AttendeeID)
	}

	session := r.AddSession(&domain.Session{
		SignalingSessionID: signalingSessionID,
		SessionID:          payload.RoomSessionID(),
		Token:              token,
		AttendeeID:         attendeeID,
	})
	r.log.Debug("registered session",
		"signalingSessionId", signalingSessionID,
		"token", token,
		"shape", payload.Kind().String(),
		"orphan", session.Orphan(),
	)
	return session, nil
}

// actorIdentity derives the (id, type) pair used for roster resolution.
// A session without a user id belongs to a guest; a federation flag marks
// a federated user; everything else is a regular user. Internal snapshot
// entries carry their actor identity explicitly and only need fallbacks.
func actorIdentity(payload signaling.Payload) (string, domain.ActorType) {
	switch p := payload.(type) {
	case signaling.InternalSession:
		actorID := p.ActorID
		if actorID == "" {
			actorID = p.UserID
		}
		actorType := p.ActorType
		if actorType == "" {
			if actorID == "" {
				actorType = domain.ActorGuests
			} else {
				actorType = domain.ActorUsers
			}
		}
		return actorID, actorType
	case signaling.StandaloneJoin:
		switch {
		case p.UserID == "":
			return "", domain.ActorGuests
		case p.Federated:
			return p.UserID, domain.ActorFederatedUsers
		default:
			return p.UserID, domain.ActorUsers
		}
	case signaling.StandaloneUpdate:
		if p.UserID == "" {
			return "", domain.ActorGuests
		}
		return p.UserID, domain.ActorUsers
	default:
		return "", domain.ActorGuests
	}
}
