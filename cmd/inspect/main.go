// Command inspect replays a recorded signaling trace through a fresh
// registry and engine, then prints the resulting sessions, participants,
// and call summary per conversation. Developer tool for debugging
// reconciliation issues from captured traffic.
//
// The trace is JSON lines, one envelope per line:
//
//	{"type":"participant","token":"t","participant":{...}}   roster seed
//	{"type":"sessions","token":"t","payloads":[{...},...]}   signaling batch
//	{"type":"left","token":"t","sessionIds":["..."]}         standalone leave
//	{"type":"disconnected","token":"t"}                      signaling drop
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"presence-lab/domain"
	"presence-lab/presence"
	"presence-lab/projection"
	"presence-lab/roster"
	"presence-lab/services"
)

type envelope struct {
	Type        string            `json:"type"`
	Token       string            `json:"token"`
	Payloads    []json.RawMessage `json:"payloads,omitempty"`
	SessionIDs  []string          `json:"sessionIds,omitempty"`
	Participant *seedParticipant  `json:"participant,omitempty"`
}

type seedParticipant struct {
	AttendeeID      int64    `json:"attendeeId"`
	ActorID         string   `json:"actorId"`
	ActorType       string   `json:"actorType"`
	DisplayName     string   `json:"displayName"`
	ParticipantType int      `json:"participantType"`
	SessionIDs      []string `json:"sessionIds"`
	InCall          int      `json:"inCall"`
	Permissions     int      `json:"permissions"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// On ignore volontairement l'absence du .env : tout a un défaut
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	tracePath := flag.String("trace", "", "Path to a JSON-lines signaling trace")
	only := flag.String("token", "", "Restrict output to one conversation token")
	flag.Parse()
	if *tracePath == "" {
		return fmt.Errorf("missing -trace")
	}

	store := roster.NewStore(log)
	registry := presence.NewRegistry(log, store)
	reconciler := presence.NewReconciler(log, registry, store)
	service := services.NewPresenceService(registry, reconciler, store)

	file, err := os.Open(*tracePath)
	if err != nil {
		return fmt.Errorf("opening trace: %w", err)
	}
	defer file.Close()

	tokens := make(map[string]struct{})
	staleWarnings := 0
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var ev envelope
		if err = json.Unmarshal([]byte(line), &ev); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		tokens[ev.Token] = struct{}{}

		switch ev.Type {
		case "participant":
			if ev.Participant == nil {
				return fmt.Errorf("line %d: participant envelope without participant", lineNo)
			}
			store.AddParticipant(ev.Token, domain.Participant{
				AttendeeID:      ev.Participant.AttendeeID,
				ActorID:         ev.Participant.ActorID,
				ActorType:       domain.ActorType(ev.Participant.ActorType),
				DisplayName:     ev.Participant.DisplayName,
				ParticipantType: domain.ParticipantType(ev.Participant.ParticipantType),
				SessionIDs:      ev.Participant.SessionIDs,
				InCall:          ev.Participant.InCall,
				Permissions:     ev.Participant.Permissions,
			})
		case "sessions":
			hasUnknown, err := service.UpdateRawSessions(ev.Token, ev.Payloads)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			if hasUnknown {
				staleWarnings++
				color.Yellow.Printf("line %d: batch referenced sessions unknown to the roster\n", lineNo)
			}
		case "left":
			service.UpdateSessionsLeft(ev.Token, ev.SessionIDs)
		case "disconnected":
			service.UpdateParticipantsDisconnectedFromStandaloneSignaling(ev.Token)
		default:
			return fmt.Errorf("line %d: unknown envelope type %q", lineNo, ev.Type)
		}
	}
	if err = scanner.Err(); err != nil {
		return fmt.Errorf("reading trace: %w", err)
	}

	for _, token := range sortedTokens(tokens) {
		if *only != "" && token != *only {
			continue
		}
		printConversation(token, store, registry, service.CallSummary(token))
	}
	if staleWarnings > 0 {
		color.Yellow.Printf("%d batch(es) suggested a stale roster\n", staleWarnings)
	}
	return nil
}

func sortedTokens(tokens map[string]struct{}) []string {
	out := lo.Keys(tokens)
	sort.Strings(out)
	return out
}

func printConversation(token string, store *roster.Store, registry *presence.Registry, summary projection.CallSummary) {
	color.Bold.Printf("\nConversation %s\n", token)

	participants := tablewriter.NewWriter(os.Stdout)
	participants.SetHeader([]string{"Attendee", "Actor", "Type", "Display Name", "In Call", "Sessions"})
	participants.SetAutoWrapText(false)
	participants.SetBorder(false)
	for _, p := range store.ParticipantsList(token) {
		inCall := color.Red.Sprint("no")
		if p.InCall != domain.CallFlagDisconnected {
			inCall = color.Green.Sprintf("0b%b", p.InCall)
		}
		participants.Append([]string{
			fmt.Sprintf("%d", p.AttendeeID),
			fmt.Sprintf("%s/%s", p.ActorType, p.ActorID),
			fmt.Sprintf("%d", p.ParticipantType),
			p.DisplayName,
			inCall,
			strings.Join(p.SessionIDs, ", "),
		})
	}
	participants.Render()

	sessions := tablewriter.NewWriter(os.Stdout)
	sessions.SetHeader([]string{"Signaling Session", "Room Session", "Attendee"})
	sessions.SetAutoWrapText(false)
	sessions.SetBorder(false)
	for _, s := range registry.Sessions() {
		if s.Token != token {
			continue
		}
		attendee := color.Yellow.Sprint("orphan")
		if !s.Orphan() {
			attendee = fmt.Sprintf("%d", *s.AttendeeID)
		}
		sessions.Append([]string{s.SignalingSessionID, s.SessionID, attendee})
	}
	sessions.Render()

	fmt.Printf("In call: %d (guests: %d, with video: %d)\n",
		len(summary.Members), summary.GuestCount, summary.WithVideo)
}
