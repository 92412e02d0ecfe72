package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kingswood/clienthub/agent/contract"
	crmx "github.com/kingswood/clienthub/pkg/crm"
	logx "github.com/kingswood/clienthub/pkg/logger"
)

const (
	maxNotes                   = 50
	maxNoteChars               = 65000
	maxConversations           = 10
	maxMessagesPerConversation = 40
	maxMessageChars            = 2000
	maxTaskDescChars           = 500
)

// CRMContext assembles the full CRM view of one client: profile, notes,
// recent conversations with their messages, and tasks. The four reads run
// concurrently and each settles independently; a failed read contributes an
// error section instead of sinking the whole bundle.
func CRMContext(ctx context.Context, gw contract.CRMGateway, clientID string) string {
	log := logx.Component("fetch.crm")

	var (
		profile    map[string]any
		profileErr error
		notes      []crmx.Note
		notesErr   error
		convos     []crmx.Conversation
		convosErr  error
		tasks      []crmx.Task
		tasksErr   error
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		profile, profileErr = gw.GetContact(ctx, clientID)
	}()
	go func() {
		defer wg.Done()
		notes, notesErr = gw.ListNotes(ctx, clientID)
	}()
	go func() {
		defer wg.Done()
		convos, convosErr = gw.SearchConversations(ctx, clientID)
	}()
	go func() {
		defer wg.Done()
		tasks, tasksErr = gw.ListTasks(ctx, clientID)
	}()
	wg.Wait()

	sections := make([]string, 0, 4)
	sections = append(sections, profileSection(profile, profileErr))
	sections = append(sections, notesSection(notes, notesErr))
	sections = append(sections, conversationsSection(ctx, gw, convos, convosErr))
	sections = append(sections, tasksSection(tasks, tasksErr))

	if profileErr != nil || notesErr != nil || convosErr != nil || tasksErr != nil {
		log.Warn().
			Str("client_id", clientID).
			AnErr("profile", profileErr).
			AnErr("notes", notesErr).
			AnErr("conversations", convosErr).
			AnErr("tasks", tasksErr).
			Msg("crm context assembled with partial failures")
	}

	return strings.Join(sections, "\n\n")
}

func profileSection(profile map[string]any, err error) string {
	if err != nil {
		return "=== CONTACT PROFILE ERROR ===\n" + err.Error()
	}
	lines := FormatContactProfile(profile)
	if len(lines) == 0 {
		return "=== CONTACT PROFILE ===\nNo profile data available."
	}
	return "=== CONTACT PROFILE ===\n" + strings.Join(lines, "\n")
}

func notesSection(notes []crmx.Note, err error) string {
	if err != nil {
		return "=== NOTES ERROR ===\n" + err.Error()
	}
	if len(notes) == 0 {
		return "=== NOTES ===\nNo notes found."
	}
	if len(notes) > maxNotes {
		notes = notes[:maxNotes]
	}
	lines := make([]string, 0, len(notes)+1)
	lines = append(lines, fmt.Sprintf("=== NOTES (%d) ===", len(notes)))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("[%s] %s", formatDate(n.DateAdded), truncate(n.Body, maxNoteChars)))
	}
	return strings.Join(lines, "\n")
}

func conversationsSection(ctx context.Context, gw contract.CRMGateway, convos []crmx.Conversation, err error) string {
	if err != nil {
		return "=== CONVERSATIONS ERROR ===\n" + err.Error()
	}
	if len(convos) == 0 {
		return "=== CONVERSATIONS ===\nNo conversations found."
	}
	if len(convos) > maxConversations {
		convos = convos[:maxConversations]
	}

	// Expand message bodies concurrently but keep conversation order stable.
	bodies := make([][]string, len(convos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, c := range convos {
		g.Go(func() error {
			msgs, err := gw.ListMessages(gctx, c.ID, maxMessagesPerConversation)
			if err != nil {
				// A single unreadable thread does not spoil the rest.
				bodies[i] = []string{"  (messages unavailable)"}
				return nil
			}
			lines := make([]string, 0, len(msgs))
			for _, m := range msgs {
				body := strings.TrimSpace(m.Body)
				if body == "" {
					continue
				}
				lines = append(lines, fmt.Sprintf("  [%s %s %s] %s",
					formatDate(m.DateAdded), m.Direction, m.Type, truncate(body, maxMessageChars)))
			}
			bodies[i] = lines
			return nil
		})
	}
	g.Wait() //nolint:errcheck // goroutines never return errors

	lines := make([]string, 0, len(convos)*2)
	lines = append(lines, fmt.Sprintf("=== CONVERSATIONS (%d) ===", len(convos)))
	for i, c := range convos {
		header := fmt.Sprintf("Conversation via %s, last message %s:",
			orDefault(c.Type, "unknown"), formatDate(c.LastMessageDate))
		lines = append(lines, header)
		if len(bodies[i]) == 0 {
			lines = append(lines, "  (no messages)")
			continue
		}
		lines = append(lines, bodies[i]...)
	}
	return strings.Join(lines, "\n")
}

func tasksSection(tasks []crmx.Task, err error) string {
	if err != nil {
		return "=== TASKS ERROR ===\n" + err.Error()
	}
	if len(tasks) == 0 {
		return "=== TASKS ===\nNo tasks found."
	}
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, fmt.Sprintf("=== TASKS (%d) ===", len(tasks)))
	for _, t := range tasks {
		status := "[OPEN]"
		if t.Completed {
			status = "[DONE]"
		}
		line := fmt.Sprintf("%s %s | Due: %s", status, t.Title, formatDate(t.DueDate))
		if t.AssignedTo != "" {
			line += " | Assigned: " + t.AssignedTo
		}
		if desc := strings.TrimSpace(t.Body); desc != "" {
			line += " | " + truncate(desc, maxTaskDescChars)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
