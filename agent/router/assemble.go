package router

import (
	"strings"

	contractx "github.com/kingswood/clienthub/agent/contract"
)

const (
	systemDataOpen  = "--- SYSTEM DATA ---"
	systemDataClose = "--- END SYSTEM DATA ---"
)

// assemble converts the inbound turns to model messages and appends the
// system data block to the content of the final user turn. Earlier turns
// pass through untouched; the caller's slice is never mutated.
func assemble(turns []contractx.Turn, sc contractx.SessionContext, data string) []contractx.Message {
	block := contextBlock(sc, data)

	lastUser := -1
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == contractx.RoleUser {
			lastUser = i
			break
		}
	}

	messages := make([]contractx.Message, 0, len(turns))
	for i, t := range turns {
		content := t.Content
		if i == lastUser && block != "" {
			content = content + "\n\n" + systemDataOpen + "\n" + block + "\n" + systemDataClose
		}
		messages = append(messages, contractx.Message{Role: t.Role, Content: content})
	}
	return messages
}

// contextBlock renders the selection state plus fetched data. An empty
// session with no data yields "", in which case nothing is injected.
func contextBlock(sc contractx.SessionContext, data string) string {
	var lines []string
	add := func(label, val string) {
		if val != "" {
			lines = append(lines, label+": "+val)
		}
	}
	add("Selected Client", nameAndID(sc.ClientName, sc.ClientID))
	add("Selected Opportunity", nameAndID(sc.OpportunityName, sc.OpportunityID))
	add("Job ID", sc.JobID)
	add("Pipeline Stage", sc.PipelineStage)
	if sc.Channel != "" && sc.Channel != contractx.ChannelUnknown {
		add("Communication Channel", string(sc.Channel))
	}

	header := strings.Join(lines, "\n")
	data = strings.TrimSpace(data)
	switch {
	case header == "":
		return data
	case data == "":
		return header
	default:
		return header + "\n\n" + data
	}
}

func nameAndID(name, id string) string {
	switch {
	case name != "" && id != "":
		return name + " (" + id + ")"
	case name != "":
		return name
	default:
		return id
	}
}
