//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"presence-lab/domain"
)

// FindQuery carries the identity facts available when resolving a freshly
// observed session against the roster. ActorID/ActorType and SessionID are
// alternative match keys; exact-match semantics, no fuzzy resolution.
type FindQuery struct {
	SessionID string
	ActorID   string
	ActorType domain.ActorType
}

// ParticipantStore is the roster collaborator owning participant records.
// The presence core only reads from it and issues update/delete commands;
// persistence, fetching, and CRUD belong to the host system.
//
// UpdateParticipant has partial-field merge semantics: fields left nil in
// the update are not touched. Implementations must tolerate reentrant
// synchronous calls from within one reconciliation batch; no cross-batch
// concurrency control is required at this layer.
type ParticipantStore interface {
	FindParticipant(token string, query FindQuery) (domain.Participant, bool)
	GetParticipant(token string, attendeeID int64) (domain.Participant, bool)
	ParticipantsList(token string) []domain.Participant
	UpdateParticipant(token string, attendeeID int64, update domain.ParticipantUpdate)
	DeleteParticipant(token string, attendeeID int64)
}
