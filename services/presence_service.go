package services

import (
	"encoding/json"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/signaling"
	"presence-lab/presence"
	"presence-lab/projection"
)

// IPresenceService is the single entry point the event-dispatch layer
// wires against.
type IPresenceService interface {
	UpdateSessions(token string, payloads []signaling.Payload) (bool, error)
	UpdateRawSessions(token string, raws []json.RawMessage) (bool, error)
	UpdateSessionsLeft(token string, signalingSessionIDs []string)
	UpdateParticipantsDisconnectedFromStandaloneSignaling(token string)
	GetSession(signalingSessionID string) (*domain.Session, bool)
	CallSummary(token string) projection.CallSummary
}

type PresenceService struct {
	registry   *presence.Registry
	reconciler *presence.Reconciler
	roster     contract.ParticipantStore
}

func NewPresenceService(registry *presence.Registry, reconciler *presence.Reconciler, roster contract.ParticipantStore) *PresenceService {
	return &PresenceService{
		registry:   registry,
		reconciler: reconciler,
		roster:     roster,
	}
}

func (s *PresenceService) UpdateSessions(token string, payloads []signaling.Payload) (bool, error) {
	return s.reconciler.UpdateSessions(token, payloads)
}

// UpdateRawSessions decodes a raw JSON batch before reconciling it, for
// hosts that hand over signaling traffic as received from the wire.
func (s *PresenceService) UpdateRawSessions(token string, raws []json.RawMessage) (bool, error) {
	payloads, err := signaling.DecodeBatch(raws)
	if err != nil {
		return false, err
	}
	return s.reconciler.UpdateSessions(token, payloads)
}

func (s *PresenceService) UpdateSessionsLeft(token string, signalingSessionIDs []string) {
	s.reconciler.UpdateSessionsLeft(token, signalingSessionIDs)
}

func (s *PresenceService) UpdateParticipantsDisconnectedFromStandaloneSignaling(token string) {
	s.reconciler.UpdateParticipantsDisconnectedFromStandaloneSignaling(token)
}

func (s *PresenceService) GetSession(signalingSessionID string) (*domain.Session, bool) {
	return s.registry.GetSession(signalingSessionID)
}

func (s *PresenceService) CallSummary(token string) projection.CallSummary {
	return projection.BuildCallSummary(token, s.roster)
}
