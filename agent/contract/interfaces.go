package contract

import (
	"context"

	crmx "github.com/kingswood/clienthub/pkg/crm"
	projectsysx "github.com/kingswood/clienthub/pkg/projectsys"
)

// Agent is one specialized handler in the registry. Implementations must
// keep FetchContext and ExecuteTool internally recovered: both return text
// (possibly containing an inline error block or a failure JSON payload) and
// never panic or propagate upstream errors.
type Agent interface {
	Name() string
	Description() string

	// Score returns the agent's confidence in [0,1] for handling the
	// latest user message. Pure and deterministic.
	Score(message string) float64

	// SystemPrompt renders the agent's instructions for this session.
	SystemPrompt(sc SessionContext) string

	// Tools declares the tool set offered to the model. Empty for
	// read-only agents.
	Tools() []ToolSpec

	// FetchContext gathers the data this agent wants injected into the
	// final user turn. lastMessage is the latest user text and drives
	// topic detection where the agent uses it.
	FetchContext(ctx context.Context, sc SessionContext, lastMessage string) string

	// ExecuteTool runs one requested tool call and returns the
	// JSON-encoded result payload fed back to the model.
	ExecuteTool(ctx context.Context, call ToolCall, sc SessionContext) string
}

// ChatModel is the narrow LLM contract the router drives. One call is one
// model round-trip.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (Message, error)
}

// CRMGateway is the read/write surface of the CRM backend consumed by the
// core.
type CRMGateway interface {
	GetContact(ctx context.Context, contactID string) (map[string]any, error)
	SearchContacts(ctx context.Context, query string) ([]crmx.ContactSummary, error)
	ListNotes(ctx context.Context, contactID string) ([]crmx.Note, error)
	CreateNote(ctx context.Context, contactID, body string) error
	ListTasks(ctx context.Context, contactID string) ([]crmx.Task, error)
	SearchConversations(ctx context.Context, contactID string) ([]crmx.Conversation, error)
	ListMessages(ctx context.Context, conversationID string, limit int) ([]crmx.ConversationMessage, error)
	ListOpportunities(ctx context.Context, contactID string) ([]crmx.Opportunity, error)
	GetOpportunity(ctx context.Context, opportunityID string) (*crmx.Opportunity, error)
	ListPipelines(ctx context.Context) ([]crmx.Pipeline, error)
}

// ProjectGateway is the surface of the project-management backend consumed
// by the core.
type ProjectGateway interface {
	ListActiveJobs(ctx context.Context, limit int) ([]projectsysx.Job, error)
	ListTeamMembers(ctx context.Context) ([]projectsysx.TeamMember, error)
	ListMembers(ctx context.Context) ([]projectsysx.Member, error)
	ListCustomers(ctx context.Context) ([]projectsysx.Account, error)
	ListVendors(ctx context.Context) ([]projectsysx.Account, error)
	CreateTask(ctx context.Context, req projectsysx.CreateTaskRequest) (projectsysx.CreatedTask, error)
}
