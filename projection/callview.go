// Package projection builds read models over the roster and the registry.
// Handles grouping and stable ordering for host consumption.
// Does not mutate state or issue roster commands.
package projection

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"presence-lab/contract"
	"presence-lab/domain"
)

// CallMember is one participant currently connected to the call.
type CallMember struct {
	AttendeeID  int64
	DisplayName string
	ActorType   domain.ActorType
	CallFlags   int
	Devices     int
}

// CallSummary is a per-conversation view of call membership, the read
// model a sidebar-like host layer renders from.
type CallSummary struct {
	Token      string
	Members    []CallMember
	GuestCount int
	WithVideo  int
}

// BuildCallSummary derives the current call view for one conversation.
// Members are ordered by display name, ties broken by attendee id, so the
// view is stable across rebuilds.
func BuildCallSummary(token string, roster contract.ParticipantStore) CallSummary {
	members := lo.FilterMap(roster.ParticipantsList(token),
		func(participant domain.Participant, _ int) (CallMember, bool) {
			if participant.InCall == domain.CallFlagDisconnected {
				return CallMember{}, false
			}
			return CallMember{
				AttendeeID:  participant.AttendeeID,
				DisplayName: participant.DisplayName,
				ActorType:   participant.ActorType,
				CallFlags:   participant.InCall,
				Devices:     len(participant.SessionIDs),
			}, true
		})

	slices.SortFunc(members, func(a, b CallMember) int {
		if c := cmp.Compare(a.DisplayName, b.DisplayName); c != 0 {
			return c
		}
		return cmp.Compare(a.AttendeeID, b.AttendeeID)
	})

	return CallSummary{
		Token:   token,
		Members: members,
		GuestCount: lo.CountBy(members, func(m CallMember) bool {
			return m.ActorType == domain.ActorGuests
		}),
		WithVideo: lo.CountBy(members, func(m CallMember) bool {
			return m.CallFlags&domain.CallFlagWithVideo != 0
		}),
	}
}
