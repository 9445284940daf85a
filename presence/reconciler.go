package presence

import (
	"log/slog"

	"github.com/samber/lo"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/signaling"
)

// Reconciler consumes signaling payload batches from both backends and
// keeps the registry and the roster's participant state consistent.
//
// Internal-signaling batches are authoritative-and-complete snapshots, so
// absence from them is meaningful: missing sessions are pruned and their
// participants disconnected. Standalone batches are deltas; absence
// carries no information on that path.
type Reconciler struct {
	log      *slog.Logger
	registry *Registry
	roster   contract.ParticipantStore
}

func NewReconciler(log *slog.Logger, registry *Registry, roster contract.ParticipantStore) *Reconciler {
	return &Reconciler{
		log:      log,
		registry: registry,
		roster:   roster,
	}
}

// resolvedEntry pairs a payload with the session it resolved to. Only
// entries whose session has a known attendee are carried forward.
type resolvedEntry struct {
	session *domain.Session
	payload signaling.Payload
}

// UpdateSessions processes one signaling batch. It registers every session
// it sees, applies per-shape participant updates in payload order, and for
// internal snapshots prunes everything absent from the batch.
//
// The returned boolean reports whether any session could not be attributed
// to a participant. Callers should treat it as "the roster may be stale,
// consider a full refresh", not as a failure. The error is non-nil only
// for payloads that violate the signaling contract.
func (r *Reconciler) UpdateSessions(token string, payloads []signaling.Payload) (bool, error) {
	hasUnknownSessions := false
	seen := make(map[string]struct{}, len(payloads))
	entries := make([]resolvedEntry, 0, len(payloads))

	for _, payload := range payloads {
		session, err := r.registry.FindOrCreateSession(token, payload)
		if err != nil {
			return hasUnknownSessions, err
		}
		seen[session.SignalingSessionID] = struct{}{}
		if session.Orphan() {
			// The session stays registered, but the entry cannot be
			// attributed to anyone until the roster catches up.
			hasUnknownSessions = true
			continue
		}
		entries = append(entries, resolvedEntry{session: session, payload: payload})
	}

	if signaling.IsInternalBatch(payloads) {
		updated := r.applyInternalUpdates(token, entries)
		r.pruneAbsentSessions(token, seen)
		r.disconnectAbsentParticipants(token, updated)
	} else {
		for _, entry := range entries {
			switch payload := entry.payload.(type) {
			case signaling.StandaloneJoin:
				r.applyJoin(token, entry.session, payload)
			case signaling.StandaloneUpdate:
				r.applyUpdate(token, entry.session, payload)
			}
		}
	}

	if hasUnknownSessions {
		r.log.Info("batch referenced sessions with no matching participant", "token", token)
	}
	return hasUnknownSessions, nil
}

// attendeeAccumulator groups one attendee's simultaneous sessions within a
// snapshot. InCall flags are OR-ed across devices, the freshest ping wins,
// permissions and room-session ids accumulate in first-seen order.
type attendeeAccumulator struct {
	attendeeID  int64
	sessionIDs  []string
	inCall      int
	lastPing    int64
	permissions int
}

// applyInternalUpdates emits one roster update per distinct attendee in
// first-seen order and returns the set of updated attendee ids.
func (r *Reconciler) applyInternalUpdates(token string, entries []resolvedEntry) map[int64]struct{} {
	byAttendee := make(map[int64]*attendeeAccumulator, len(entries))
	order := make([]int64, 0, len(entries))

	for _, entry := range entries {
		payload, ok := entry.payload.(signaling.InternalSession)
		if !ok {
			continue
		}
		attendeeID := *entry.session.AttendeeID
		acc, exists := byAttendee[attendeeID]
		if !exists {
			acc = &attendeeAccumulator{attendeeID: attendeeID}
			byAttendee[attendeeID] = acc
			order = append(order, attendeeID)
		}
		acc.sessionIDs = append(acc.sessionIDs, payload.SessionID)
		acc.inCall |= payload.InCall
		acc.lastPing = max(acc.lastPing, payload.LastPing)
		acc.permissions = payload.Permissions
	}

	updated := make(map[int64]struct{}, len(order))
	for _, attendeeID := range order {
		acc := byAttendee[attendeeID]
		r.roster.UpdateParticipant(token, attendeeID, domain.ParticipantUpdate{
			SessionIDs:  lo.ToPtr(lo.Uniq(acc.sessionIDs)),
			InCall:      lo.ToPtr(acc.inCall),
			LastPing:    lo.ToPtr(acc.lastPing),
			Permissions: lo.ToPtr(acc.permissions),
		})
		updated[attendeeID] = struct{}{}
	}
	return updated
}

// pruneAbsentSessions drops every registered session of this conversation
// that the snapshot no longer contains.
func (r *Reconciler) pruneAbsentSessions(token string, seen map[string]struct{}) {
	for _, session := range r.registry.Sessions() {
		if session.Token != token {
			continue
		}
		if _, ok := seen[session.SignalingSessionID]; !ok {
			r.registry.DeleteSession(session.SignalingSessionID)
		}
	}
}

// disconnectAbsentParticipants marks every known participant that still
// claims active sessions but was absent from the snapshot's resolved set
// as disconnected. This is the only negative signal path in the system.
func (r *Reconciler) disconnectAbsentParticipants(token string, updated map[int64]struct{}) {
	for _, participant := range r.roster.ParticipantsList(token) {
		if len(participant.SessionIDs) == 0 {
			continue
		}
		if _, ok := updated[participant.AttendeeID]; ok {
			continue
		}
		r.log.Debug("participant absent from snapshot, disconnecting",
			"token", token, "attendeeId", participant.AttendeeID)
		r.roster.UpdateParticipant(token, participant.AttendeeID, domain.ParticipantUpdate{
			InCall:     lo.ToPtr(domain.CallFlagDisconnected),
			SessionIDs: lo.ToPtr([]string{}),
		})
	}
}

// applyJoin merges the joining device's room-session id into the
// participant's session list. A join never drops other devices and only
// touches the display name when the payload actually supplies one.
// Stale joins for participants already gone from the roster are skipped.
func (r *Reconciler) applyJoin(token string, session *domain.Session, payload signaling.StandaloneJoin) {
	participant, found := r.roster.GetParticipant(token, *session.AttendeeID)
	if !found {
		return
	}
	update := domain.ParticipantUpdate{
		SessionIDs: lo.ToPtr(lo.Uniq(append(participant.SessionIDs, payload.RoomSession))),
	}
	if payload.User != nil && payload.User.DisplayName != "" {
		update.DisplayName = lo.ToPtr(payload.User.DisplayName)
	}
	r.roster.UpdateParticipant(token, participant.AttendeeID, update)
}

// applyUpdate overwrites the participant's live-call state with the
// payload's values. Unlike a join this path never touches SessionIDs.
func (r *Reconciler) applyUpdate(token string, session *domain.Session, payload signaling.StandaloneUpdate) {
	update := domain.ParticipantUpdate{
		InCall:          lo.ToPtr(payload.InCall),
		ParticipantType: lo.ToPtr(payload.ParticipantType),
		LastPing:        lo.ToPtr(payload.LastPing),
		Permissions:     lo.ToPtr(payload.Permissions),
	}
	if payload.DisplayName != nil {
		update.DisplayName = payload.DisplayName
	}
	r.roster.UpdateParticipant(token, *session.AttendeeID, update)
}

// UpdateSessionsLeft processes a standalone leave event: a bare list of
// signaling session ids. Each named session's room-session id is removed
// from its participant, clearing the call flags only when the last device
// is gone, and the session itself is dropped from the registry. Unknown
// ids are skipped silently — under unordered delivery, absence is normal.
func (r *Reconciler) UpdateSessionsLeft(token string, signalingSessionIDs []string) {
	for _, signalingSessionID := range signalingSessionIDs {
		session, ok := r.registry.GetSession(signalingSessionID)
		if !ok {
			continue
		}
		if !session.Orphan() {
			if participant, found := r.roster.GetParticipant(token, *session.AttendeeID); found {
				remaining := lo.Without(participant.SessionIDs, session.SessionID)
				update := domain.ParticipantUpdate{SessionIDs: lo.ToPtr(remaining)}
				if len(remaining) == 0 {
					update.InCall = lo.ToPtr(domain.CallFlagDisconnected)
				}
				r.roster.UpdateParticipant(token, participant.AttendeeID, update)
			}
		}
		r.registry.DeleteSession(signalingSessionID)
	}
}

// UpdateParticipantsDisconnectedFromStandaloneSignaling handles the
// standalone signaling connection itself dropping. The sessions are not
// known to have ended, only the call-presence signal went stale, so every
// participant with active sessions has the call flags cleared while the
// session lists stay untouched.
func (r *Reconciler) UpdateParticipantsDisconnectedFromStandaloneSignaling(token string) {
	r.log.Info("standalone signaling dropped, clearing call state", "token", token)
	for _, participant := range r.roster.ParticipantsList(token) {
		if len(participant.SessionIDs) == 0 {
			continue
		}
		r.roster.UpdateParticipant(token, participant.AttendeeID, domain.ParticipantUpdate{
			InCall: lo.ToPtr(domain.CallFlagDisconnected),
		})
	}
}
