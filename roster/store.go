// Package roster is an in-memory reference implementation of the
// participant store contract. A real client substitutes an API-backed
// store; this one pins the merge and lookup semantics the presence core
// relies on, and backs the tests and the inspect tool.
package roster

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/samber/lo"

	"presence-lab/contract"
	"presence-lab/domain"
)

// Store keeps participants per conversation token, keyed by attendee id.
// Unlike the presence core, the roster may be read by host goroutines
// (UI, pollers), so access is guarded.
type Store struct {
	mu           sync.RWMutex
	log          *slog.Logger
	participants map[string]map[int64]*domain.Participant
}

func NewStore(log *slog.Logger) *Store {
	return &Store{
		log:          log,
		participants: make(map[string]map[int64]*domain.Participant),
	}
}

// AddParticipant registers a participant record, replacing any prior
// record with the same attendee id. Host-side seeding, not used by the
// presence core.
func (s *Store) AddParticipant(token string, participant domain.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.participants[token]; !ok {
		s.participants[token] = make(map[int64]*domain.Participant)
	}
	stored := participant
	stored.SessionIDs = slices.Clone(participant.SessionIDs)
	s.participants[token][participant.AttendeeID] = &stored
}

// FindParticipant resolves an identity query with exact-match semantics.
// A query with an actor id matches on (actorId, actorType); a query
// without one falls back to room-session id containment, which is how
// guests are found.
func (s *Store) FindParticipant(token string, query contract.FindQuery) (domain.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, participant := range s.participants[token] {
		if query.ActorID != "" {
			if participant.ActorID == query.ActorID && participant.ActorType == query.ActorType {
				return copyOf(participant), true
			}
			continue
		}
		if query.SessionID != "" && lo.Contains(participant.SessionIDs, query.SessionID) {
			return copyOf(participant), true
		}
	}
	return domain.Participant{}, false
}

func (s *Store) GetParticipant(token string, attendeeID int64) (domain.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[token][attendeeID]
	if !ok {
		return domain.Participant{}, false
	}
	return copyOf(participant), true
}

// ParticipantsList returns all participants of a conversation, sorted by
// attendee id so callers iterating it observe a stable order.
func (s *Store) ParticipantsList(token string) []domain.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := lo.MapToSlice(s.participants[token], func(_ int64, p *domain.Participant) domain.Participant {
		return copyOf(p)
	})
	slices.SortFunc(list, func(a, b domain.Participant) int {
		return cmp.Compare(a.AttendeeID, b.AttendeeID)
	})
	return list
}

// UpdateParticipant applies a partial-field merge: nil fields of the
// update leave the stored record untouched. Unknown attendees are a
// silent no-op — the command is simply stale.
func (s *Store) UpdateParticipant(token string, attendeeID int64, update domain.ParticipantUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[token][attendeeID]
	if !ok {
		return
	}
	if update.SessionIDs != nil {
		participant.SessionIDs = slices.Clone(*update.SessionIDs)
	}
	if update.InCall != nil {
		participant.InCall = *update.InCall
	}
	if update.DisplayName != nil {
		participant.DisplayName = *update.DisplayName
	}
	if update.ParticipantType != nil {
		participant.ParticipantType = *update.ParticipantType
	}
	if update.Permissions != nil {
		participant.Permissions = *update.Permissions
	}
	if update.LastPing != nil {
		participant.LastPing = *update.LastPing
	}
	s.log.Debug("updated participant", "token", token, "attendeeId", attendeeID)
}

func (s *Store) DeleteParticipant(token string, attendeeID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if members, ok := s.participants[token]; ok {
		delete(members, attendeeID)

		// If no one is left in the conversation, drop the map entry
		// entirely to avoid leaking empty maps over time.
		if len(members) == 0 {
			delete(s.participants, token)
		}
	}
}

func copyOf(participant *domain.Participant) domain.Participant {
	out := *participant
	out.SessionIDs = slices.Clone(participant.SessionIDs)
	return out
}
