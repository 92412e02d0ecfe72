// Package knowitall implements the read-only question answering agent: it
// pulls CRM and project-system context for the current selection and lets
// the model answer from that data alone.
package knowitall

import (
	"context"
	"regexp"
	"strings"

	contractx "github.com/kingswood/clienthub/agent/contract"
	"github.com/kingswood/clienthub/agent/fetch"
	intentx "github.com/kingswood/clienthub/agent/intent"
	logx "github.com/kingswood/clienthub/pkg/logger"
)

var (
	questionPattern = regexp.MustCompile(`(?i)\b(who|what|when|where|why|how|which|tell me|show me|give me|list|find|look.?up|summar)`)
	entityPattern   = regexp.MustCompile(`(?i)\b(client|contact|customer|vendor|job|project|opportunity|note|task|conversation|team|history|status)`)
)

// Agent answers questions about clients and jobs. It offers no tools.
type Agent struct {
	crm     contractx.CRMGateway
	project contractx.ProjectGateway
	prompt  string
}

var _ contractx.Agent = (*Agent)(nil)

func New(crm contractx.CRMGateway, project contractx.ProjectGateway, prompt string) *Agent {
	return &Agent{crm: crm, project: project, prompt: prompt}
}

func (a *Agent) Name() string { return "know-it-all" }

func (a *Agent) Description() string {
	return "Answers questions about clients, communication history, opportunities, jobs, team, customers and vendors."
}

// Score favors question-shaped messages about known entities. The default
// tier keeps this agent competitive as the general fallback.
func (a *Agent) Score(message string) float64 {
	switch {
	case questionPattern.MatchString(message):
		return 0.8
	case entityPattern.MatchString(message):
		return 0.5
	default:
		return 0.3
	}
}

func (a *Agent) SystemPrompt(contractx.SessionContext) string { return a.prompt }

func (a *Agent) Tools() []contractx.ToolSpec { return nil }

// FetchContext detects which topics the message touches and gathers the
// matching data. With a client selected the CRM bundle is always included;
// without one, jobs serve as the fallback topic.
func (a *Agent) FetchContext(ctx context.Context, sc contractx.SessionContext, lastMessage string) string {
	it := intentx.Detect(lastMessage).WithFallback(sc.ClientID != "")

	var sections []string
	if it.CRMData && sc.ClientID != "" {
		sections = append(sections, fetch.CRMContext(ctx, a.crm, sc.ClientID))
	}
	if text, _ := fetch.OpportunityContext(ctx, a.crm, sc); text != "" {
		sections = append(sections, text)
	}
	if it.NeedsProject() {
		if text := fetch.ProjectContext(ctx, a.project, it); text != "" {
			sections = append(sections, text)
		}
	}

	logx.Component("agent.knowitall").Debug().
		Bool("crm", it.CRMData).
		Bool("jobs", it.Jobs).
		Bool("team", it.Team).
		Bool("customers", it.Customers).
		Bool("vendors", it.Vendors).
		Int("sections", len(sections)).
		Msg("context assembled")

	return strings.Join(sections, "\n\n")
}

// ExecuteTool should never be reached; the agent declares no tools.
func (a *Agent) ExecuteTool(_ context.Context, call contractx.ToolCall, _ contractx.SessionContext) string {
	return `{"success":false,"error":"tool ` + call.Name + ` is not available"}`
}
