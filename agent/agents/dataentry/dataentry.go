// Package dataentry implements the write-path agent: it creates tasks in
// the project management system through a model-driven tool call.
package dataentry

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	contractx "github.com/kingswood/clienthub/agent/contract"
	logx "github.com/kingswood/clienthub/pkg/logger"
	projectsysx "github.com/kingswood/clienthub/pkg/projectsys"
)

var (
	explicitPattern = regexp.MustCompile(`(?i)\b(create|add|make|new)\b.{0,40}\btask\b`)
	verbPattern     = regexp.MustCompile(`(?i)\b(assign|schedule|remind)\b`)
	taskPattern     = regexp.MustCompile(`(?i)\btasks?\b`)
	writeHint       = regexp.MustCompile(`(?i)\b(create|add|make|log|record|enter)\b`)
)

// Agent creates project-system tasks. Read questions score low so the
// question-answering agent wins them.
type Agent struct {
	project contractx.ProjectGateway
	prompt  string
}

var _ contractx.Agent = (*Agent)(nil)

func New(project contractx.ProjectGateway, prompt string) *Agent {
	return &Agent{project: project, prompt: prompt}
}

func (a *Agent) Name() string { return "data-entry" }

func (a *Agent) Description() string {
	return "Creates tasks in the project management system."
}

// Score tiers, strongest first. A bare write verb without task vocabulary
// stays below the question agent's default so reads never land here.
func (a *Agent) Score(message string) float64 {
	switch {
	case explicitPattern.MatchString(message):
		return 0.95
	case verbPattern.MatchString(message) && taskPattern.MatchString(message):
		return 0.9
	case taskPattern.MatchString(message) && writeHint.MatchString(message):
		return 0.7
	case taskPattern.MatchString(message):
		return 0.4
	default:
		return 0.1
	}
}

func (a *Agent) SystemPrompt(contractx.SessionContext) string { return a.prompt }

func (a *Agent) Tools() []contractx.ToolSpec {
	return []contractx.ToolSpec{
		{
			Name:        "create_task",
			Description: "Create a task on a job in the project management system.",
			Parameters: map[string]any{
				"jobId": map[string]any{
					"type":        "string",
					"description": "Id of the job the task belongs to. Omit to use the currently selected job.",
				},
				"name": map[string]any{
					"type":        "string",
					"description": "Short task name.",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Longer task details.",
				},
				"startDate": map[string]any{
					"type":        "string",
					"description": "Start date, YYYY-MM-DD.",
				},
				"endDate": map[string]any{
					"type":        "string",
					"description": "Due date, YYYY-MM-DD.",
				},
			},
			Required: []string{"name"},
		},
	}
}

// FetchContext injects only the selection state; task creation needs no bulk
// data. The assembled block already carries the job id when one is selected.
func (a *Agent) FetchContext(context.Context, contractx.SessionContext, string) string {
	return ""
}

// ExecuteTool runs one create_task call. All failures come back as a
// failure payload for the model; nothing propagates as an error.
func (a *Agent) ExecuteTool(ctx context.Context, call contractx.ToolCall, sc contractx.SessionContext) string {
	if call.Name != "create_task" {
		return failure("unknown tool " + call.Name)
	}

	jobID := strings.TrimSpace(stringArg(call.Input, "jobId"))
	if jobID == "" {
		jobID = sc.JobID
	}
	name := strings.TrimSpace(stringArg(call.Input, "name"))

	switch {
	case jobID == "":
		return failure("no job id: provide jobId or select an opportunity linked to a job")
	case name == "":
		return failure("task name is required")
	}

	created, err := a.project.CreateTask(ctx, projectsysx.CreateTaskRequest{
		JobID:       jobID,
		Name:        name,
		Description: stringArg(call.Input, "description"),
		StartDate:   stringArg(call.Input, "startDate"),
		EndDate:     stringArg(call.Input, "endDate"),
	})
	if err != nil {
		logx.Component("agent.dataentry").Error().Err(err).Str("job_id", jobID).Msg("create task failed")
		return failure(err.Error())
	}

	out, _ := json.Marshal(map[string]any{
		"success": true,
		"result":  map[string]string{"id": created.ID, "name": created.Name},
	})
	return string(out)
}

func stringArg(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}

func failure(msg string) string {
	out, _ := json.Marshal(map[string]any{"success": false, "error": msg})
	return string(out)
}
