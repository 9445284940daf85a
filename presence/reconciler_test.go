package presence

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"presence-lab/contract"
	"presence-lab/domain"
	"presence-lab/domain/signaling"
	"presence-lab/errors"
	"presence-lab/mocks"
)

func newTestReconciler(t *testing.T, store contract.ParticipantStore) (*Reconciler, *Registry) {
	t.Helper()
	registry := newTestRegistry(t, store)
	return NewReconciler(registry.log, registry, store), registry
}

func internalEntry(sessionID, userID string, inCall int, lastPing int64) signaling.InternalSession {
	return signaling.InternalSession{
		SessionID:   sessionID,
		RoomID:      1,
		UserID:      userID,
		ActorID:     userID,
		ActorType:   domain.ActorUsers,
		InCall:      inCall,
		LastPing:    lastPing,
		Permissions: domain.PermissionsDefault,
	}
}

func TestReconciler_Internal_Batch_Groups_Sessions_By_Attendee(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockParticipantStore(ctrl)
	reconciler, _ := newTestReconciler(t, mockStore)

	// Given a snapshot where s2 and s3 belong to the same attendee
	alice := domain.Participant{AttendeeID: 1, ActorID: "alice", ActorType: domain.ActorUsers}
	bob := domain.Participant{AttendeeID: 2, ActorID: "bob", ActorType: domain.ActorUsers}
	payloads := []signaling.Payload{
		internalEntry("s1", "alice", domain.CallFlagInCall, 100),
		internalEntry("s2", "bob", domain.CallFlagInCall, 100),
		internalEntry("s3", "bob", domain.CallFlagInCall|domain.CallFlagWithVideo, 200),
	}

	mockStore.EXPECT().FindParticipant(token, gomock.Any()).Return(alice, true)
	mockStore.EXPECT().FindParticipant(token, gomock.Any()).Return(bob, true).Times(2)
	mockStore.EXPECT().ParticipantsList(token).Return([]domain.Participant{alice, bob})

	// Then exactly one update per distinct attendee is issued, in
	// first-seen order, with bob's device list accumulated in batch order
	gomock.InOrder(
		mockStore.EXPECT().UpdateParticipant(token, int64(1), domain.ParticipantUpdate{
			SessionIDs:  lo.ToPtr([]string{"s1"}),
			InCall:      lo.ToPtr(domain.CallFlagInCall),
			LastPing:    lo.ToPtr(int64(100)),
			Permissions: lo.ToPtr(domain.PermissionsDefault),
		}),
		mockStore.EXPECT().UpdateParticipant(token, int64(2), domain.ParticipantUpdate{
			SessionIDs:  lo.ToPtr([]string{"s2", "s3"}),
			InCall:      lo.ToPtr(domain.CallFlagInCall | domain.CallFlagWithVideo),
			LastPing:    lo.ToPtr(int64(200)),
			Permissions: lo.ToPtr(domain.PermissionsDefault),
		}),
	)

	hasUnknown, err := reconciler.UpdateSessions(token, payloads)

	req.NoError(err)
	req.False(hasUnknown)
}

func TestReconciler_Internal_Snapshot_Prunes_Absent_Sessions(t *testing.T) {
	req := require.New(t)
	store := newTestRoster(t)
	reconciler, registry := newTestReconciler(t, store)

	// Given five connected participants known from an earlier snapshot
	sessionIDs := []string{"s1", "s2", "s3", "s4", "s5"}
	var first []signaling.Payload
	for i, sessionID := range sessionIDs {
		userID := string(rune('a' + i))
		store.AddParticipant(token, domain.Participant{
			AttendeeID: int64(i + 1),
			ActorID:    userID,
			ActorType:  domain.ActorUsers,
		})
		first = append(first, internalEntry(sessionID, userID, domain.CallFlagInCall, 100))
	}
	_, err := reconciler.UpdateSessions(token, first)
	req.NoError(err)
	req.Len(registry.Sessions(), 5)

	// When the next authoritative snapshot only contains s2
	_, err = reconciler.UpdateSessions(token, []signaling.Payload{
		internalEntry("s2", "b", domain.CallFlagInCall, 200),
	})
	req.NoError(err)

	// Then every other session is gone from the registry
	req.Len(registry.Sessions(), 1)
	_, ok := registry.GetSession("s2")
	req.True(ok)

	// And the absent participants were commanded disconnected
	for _, attendeeID := range []int64{1, 3, 4, 5} {
		participant, found := store.GetParticipant(token, attendeeID)
		req.True(found)
		req.Equal(domain.CallFlagDisconnected, participant.InCall)
		req.Empty(participant.SessionIDs)
	}
	survivor, found := store.GetParticipant(token, 2)
	req.True(found)
	req.Equal(domain.CallFlagInCall, survivor.InCall)
	req.Equal([]string{"s2"}, survivor.SessionIDs)
}

func TestReconciler_Reports_Unknown_Sessions_But_Registers_Them(t *testing.T) {
	req := require.New(t)
	store := newTestRoster(t)
	reconciler, registry := newTestReconciler(t, store)

	// Given a snapshot entry whose actor is absent from the roster
	hasUnknown, err := reconciler.UpdateSessions(token, []signaling.Payload{
		internalEntry("s-stranger", "stranger", domain.CallFlagInCall, 100),
	})

	// Then the staleness signal is raised instead of an error
	req.NoError(err)
	req.True(hasUnknown)

	// And the session is still registered, as an orphan
	session, ok := registry.GetSession("s-stranger")
	req.True(ok)
	req.True(session.Orphan())
}

func TestReconciler_Propagates_Invalid_Payload(t *testing.T) {
	req := require.New(t)
	reconciler, _ := newTestReconciler(t, newTestRoster(t))

	_, err := reconciler.UpdateSessions(token, []signaling.Payload{
		signaling.InternalSession{RoomID: 1, UserID: "alice"},
	})

	req.ErrorIs(err, errors.ErrMissingSessionID)
}

func TestReconciler_Join_Merges_Device_Into_Session_List(t *testing.T) {
	req := require.New(t)
	store := newTestRoster(t)
	reconciler, _ := newTestReconciler(t, store)
	store.AddParticipant(token, domain.Participant{
		AttendeeID:  7,
		ActorID:     "bob",
		ActorType:   domain.ActorUsers,
		DisplayName: "Bobby",
		SessionIDs:  []string{"room-old"},
		InCall:      domain.CallFlagInCall,
	})

	// When bob joins from a second device, with no user block
	_, err := reconciler.UpdateSessions(token, []signaling.Payload{
		signaling.StandaloneJoin{SessionID: "sig-new", RoomSession: "room-new", UserID: "bob"},
	})
	req.NoError(err)

	// Then the new device is appended and the display name is preserved
	participant, found := store.GetParticipant(token, 7)
	req.True(found)
	req.Equal([]string{"room-old", "room-new"}, participant.SessionIDs)
	req.Equal("Bobby", participant.DisplayName)

	// And replaying the same join does not duplicate the device
	_, err = reconciler.UpdateSessions(token, []signaling.Payload{
		signaling.StandaloneJoin{SessionID: "sig-new", RoomSession: "room-new", UserID: "bob"},
	})
	req.NoError(err)
	participant, _ = store.GetParticipant(token, 7)
	req.Equal([]string{"room-old", "room-new"}, participant.SessionIDs)
}

func TestReconciler_Join_Updates_Supplied_Display_Name(t *testing.T) {
	req := require.New(t)
	store := newTestRoster(t)
	reconciler, _ := newTestReconciler(t, store)
	store.AddParticipant(token, domain.Participant{
		AttendeeID:  7,
		ActorID:     "bob",
		ActorType:   domain.ActorUsers,
		DisplayName: "Bobby",
	})

	_, err := reconciler.UpdateSessions(token, []signaling.Payload{
		signaling.StandaloneJoin{
			SessionID:   "sig-1",
			RoomSession: "room-1",
			UserID:      "bob",
			User:        &signaling.JoinUser{DisplayName: "Robert"},
		},
	})
	req.NoError(err)

	participant, _ := store.GetParticipant(token, 7)
	req.Equal("Robert", participant.DisplayName)
}

func TestReconciler_Join_Skips_Participant_Gone_From_Roster(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockParticipantStore(ctrl)
	reconciler, _ := newTestReconciler(t, mockStore)

	// Given the participant resolved at creation but vanished before the update
	mockStore.EXPECT().
		FindParticipant(token, gomock.Any()).
		Return(domain.Participant{AttendeeID: 7}, true)
	mockStore.EXPECT().
		GetParticipant(token, int64(7)).
		Return(domain.Participant{}, false)
	mockStore.EXPECT().UpdateParticipant(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Then the stale join is absorbed silently
	hasUnknown, err := reconciler.UpdateSessions(token, []signaling.Payload{
		signaling.StandaloneJoin{SessionID: "sig-1", RoomSession: "room-1", UserID: "bob"},
	})
	req.NoError(err)
	req.False(hasUnknown)
}

func TestReconciler_Standalone_Update_Overwrites_State_But_Not_Sessions(t *testing.T) {
	req := require.New(t)
	store := newTestRoster(t)
	reconciler, _ := newTestReconciler(t, store)
	store.AddParticipant(token, domain.Participant{
		AttendeeID:      4,
		ActorID:         "dana",
		ActorType:       domain.ActorUsers,
		SessionIDs:      []string{"room-4"},
		InCall:          domain.CallFlagInCall,
		ParticipantType: domain.ParticipantUser,
		Permissions:     domain.PermissionsDefault,
	})

	_, err := reconciler.UpdateSessions(token, []signaling.Payload{
		signaling.StandaloneUpdate{
			SessionID:       "sig-4",
			UserID:          "dana",
			InCall:          domain.CallFlagInCall | domain.CallFlagWithAudio,
			ParticipantType: domain.ParticipantModerator,
			LastPing:        333,
			Permissions:     domain.PermissionsCustom | domain.PermissionsPublishAudio,
		},
	})
	req.NoError(err)

	participant, _ := store.GetParticipant(token, 4)
	req.Equal(domain.CallFlagInCall|domain.CallFlagWithAudio, participant.InCall)
	req.Equal(domain.ParticipantModerator, participant.ParticipantType)
	req.Equal(int64(333), participant.LastPing)
	req.Equal(domain.PermissionsCustom|domain.PermissionsPublishAudio, participant.Permissions)
	// The update path never touches the device list
	req.Equal([]string{"room-4"}, participant.SessionIDs)
}

func TestReconciler_Leave_Removes_Exactly_One_Device(t *testing.T) {
	req := require.New(t)
	store := newTestRoster(t)
	reconciler, registry := newTestReconciler(t, store)
	store.AddParticipant(token, domain.Participant{
		AttendeeID: 2,
		ActorID:    "bob",
		ActorType:  domain.ActorUsers,
		SessionIDs: []string{"s2", "s3"},
		InCall:     domain.CallFlagInCall,
	})
	registry.AddSession(&domain.Session{SignalingSessionID: "sig-2", SessionID: "s2", Token: token, AttendeeID: lo.ToPtr(int64(2))})
	registry.AddSession(&domain.Session{SignalingSessionID: "sig-3", SessionID: "s3", Token: token, AttendeeID: lo.ToPtr(int64(2))})

	// When one of the two devices leaves
	reconciler.UpdateSessionsLeft(token, []string{"sig-2"})

	// Then only that device is removed and the call state is untouched
	participant, _ := store.GetParticipant(token, 2)
	req.Equal([]string{"s3"}, participant.SessionIDs)
	req.Equal(domain.CallFlagInCall, participant.InCall)
	_, ok := registry.GetSession("sig-2")
	req.False(ok)

	// And leaving the last device clears the call state
	reconciler.UpdateSessionsLeft(token, []string{"sig-3"})
	participant, _ = store.GetParticipant(token, 2)
	req.Empty(participant.SessionIDs)
	req.Equal(domain.CallFlagDisconnected, participant.InCall)
	req.Empty(registry.Sessions())
}

func TestReconciler_Leave_Skips_Unknown_Sessions(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockParticipantStore(ctrl)
	reconciler, _ := newTestReconciler(t, mockStore)
	mockStore.EXPECT().UpdateParticipant(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Leaves for never-registered sessions are not errors
	req.NotPanics(func() {
		reconciler.UpdateSessionsLeft(token, []string{"sig-ghost"})
	})
}

func TestReconciler_Join_Then_Leave_Round_Trips(t *testing.T) {
	req := require.New(t)
	store := newTestRoster(t)
	reconciler, registry := newTestReconciler(t, store)
	store.AddParticipant(token, domain.Participant{
		AttendeeID: 5,
		ActorID:    "eve",
		ActorType:  domain.ActorUsers,
		SessionIDs: []string{"room-main"},
		InCall:     domain.CallFlagInCall,
	})

	// When a session joins and then leaves again
	_, err := reconciler.UpdateSessions(token, []signaling.Payload{
		signaling.StandaloneJoin{SessionID: "sig-5", RoomSession: "room-extra", UserID: "eve"},
	})
	req.NoError(err)
	reconciler.UpdateSessionsLeft(token, []string{"sig-5"})

	// Then registry and participant are back to their pre-join state
	_, ok := registry.GetSession("sig-5")
	req.False(ok)
	participant, _ := store.GetParticipant(token, 5)
	req.Equal([]string{"room-main"}, participant.SessionIDs)
	req.Equal(domain.CallFlagInCall, participant.InCall)
}

func TestReconciler_Standalone_Disconnect_Clears_Call_State_Only(t *testing.T) {
	req := require.New(t)
	store := newTestRoster(t)
	reconciler, registry := newTestReconciler(t, store)
	store.AddParticipant(token, domain.Participant{
		AttendeeID: 1,
		ActorID:    "alice",
		ActorType:  domain.ActorUsers,
		SessionIDs: []string{"room-1"},
		InCall:     domain.CallFlagInCall | domain.CallFlagWithVideo,
	})
	store.AddParticipant(token, domain.Participant{
		AttendeeID: 2,
		ActorID:    "bob",
		ActorType:  domain.ActorUsers,
	})
	registry.AddSession(&domain.Session{SignalingSessionID: "sig-1", SessionID: "room-1", Token: token, AttendeeID: lo.ToPtr(int64(1))})

	// When the standalone signaling connection itself drops
	reconciler.UpdateParticipantsDisconnectedFromStandaloneSignaling(token)

	// Then call presence is cleared but the sessions are kept: they are
	// not known to have ended, only the signal went stale
	alice, _ := store.GetParticipant(token, 1)
	req.Equal(domain.CallFlagDisconnected, alice.InCall)
	req.Equal([]string{"room-1"}, alice.SessionIDs)
	req.Len(registry.Sessions(), 1)

	// And participants without sessions are left alone
	bob, _ := store.GetParticipant(token, 2)
	req.Equal(domain.CallFlagDisconnected, bob.InCall)
}
