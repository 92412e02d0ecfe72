package contract

import "strings"

// Channel says which system carries day-to-day communication with a client,
// derived from the opportunity's pipeline stage.
type Channel string

const (
	ChannelCRM     Channel = "crm"
	ChannelProject Channel = "project-system"
	ChannelUnknown Channel = "unknown"
)

// Pipeline stages where communication goes through the CRM.
var crmStages = map[string]struct{}{
	"new inquiry":            {},
	"initial call scheduled": {},
	"discovery scheduled":    {},
	"no-show":                {},
	"nurture":                {},
	"completed":              {},
	"closed/not interested":  {},
	"gbp review requested":   {},
}

// Pipeline stages where communication goes through the project system.
var projectStages = map[string]struct{}{
	"leads":         {},
	"in-design":     {},
	"ready":         {},
	"in-production": {},
	"final billing": {},
}

// ChannelForStage maps a pipeline-stage label to its communication channel.
// Matching is on the lower-cased, trimmed label; unrecognized stages map to
// ChannelUnknown.
func ChannelForStage(stageName string) Channel {
	lower := strings.ToLower(strings.TrimSpace(stageName))
	if _, ok := crmStages[lower]; ok {
		return ChannelCRM
	}
	if _, ok := projectStages[lower]; ok {
		return ChannelProject
	}
	return ChannelUnknown
}

// SessionContext is the per-request selection state: which client and
// opportunity the caller is looking at. It is built once at request entry
// and never mutated.
type SessionContext struct {
	ClientID        string
	ClientName      string
	OpportunityID   string
	OpportunityName string
	JobID           string // externally-linked project-system job id, if known
	PipelineStage   string
	Channel         Channel
}

// NewSessionContext builds a SessionContext and derives the communication
// channel from the pipeline stage.
func NewSessionContext(clientID, clientName, opportunityID, opportunityName, jobID, pipelineStage string) SessionContext {
	return SessionContext{
		ClientID:        strings.TrimSpace(clientID),
		ClientName:      strings.TrimSpace(clientName),
		OpportunityID:   strings.TrimSpace(opportunityID),
		OpportunityName: strings.TrimSpace(opportunityName),
		JobID:           strings.TrimSpace(jobID),
		PipelineStage:   strings.TrimSpace(pipelineStage),
		Channel:         ChannelForStage(pipelineStage),
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one entry of the inbound conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

// Message is a provider-agnostic chat message exchanged with the model.
// Assistant messages may carry tool calls; tool messages carry the id of the
// call they answer.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolSpec declares one tool offered to the model. Parameters holds the
// JSON-schema properties object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
	Required    []string
}

// ChatRequest is one model round-trip: system instructions, the message
// history so far, and the tool set on offer (possibly empty).
type ChatRequest struct {
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// Result is the routed outcome of one exchange: the reply text and the name
// of the agent that produced it.
type Result struct {
	AgentName string `json:"agent"`
	Reply     string `json:"reply"`
}
