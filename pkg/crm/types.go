package crm

import (
	"strconv"
	"strings"
)

// Note is a single CRM note attached to a contact.
type Note struct {
	ID        string `json:"id"`
	Body      string `json:"body"`
	DateAdded string `json:"dateAdded"`
}

// Conversation is a CRM conversation thread header. Messages are fetched
// separately per conversation.
type Conversation struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	LastMessageDate string `json:"lastMessageDate"`
}

// ConversationMessage is one message inside a conversation, newest first as
// returned by the upstream.
type ConversationMessage struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
	Type      string `json:"type"`
	Body      string `json:"body"`
	DateAdded string `json:"dateAdded"`
}

// Task is a CRM follow-up task attached to a contact.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
	Completed   bool   `json:"completed"`
}

// CustomField is the loosely-keyed custom field shape the CRM attaches to
// contacts and opportunities. Which of FieldKey/Key/ID is populated varies
// by endpoint.
type CustomField struct {
	ID       string `json:"id"`
	FieldKey string `json:"fieldKey"`
	Key      string `json:"key"`
	Value    any    `json:"value"`
}

// Label returns the best available human key for the field.
func (f CustomField) Label() string {
	switch {
	case f.FieldKey != "":
		return f.FieldKey
	case f.Key != "":
		return f.Key
	case f.ID != "":
		return f.ID
	default:
		return "field"
	}
}

type namedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Opportunity is a CRM sales opportunity. Pipeline and stage names appear
// under different keys depending on the endpoint, so resolution helpers try
// each in turn.
type Opportunity struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Status            string        `json:"status"`
	PipelineID        string        `json:"pipelineId"`
	PipelineName      string        `json:"pipelineName"`
	Pipeline          *namedRef     `json:"pipeline,omitempty"`
	PipelineStageID   string        `json:"pipelineStageId"`
	StageName         string        `json:"stageName"`
	PipelineStageName string        `json:"pipelineStageName"`
	Stage             *namedRef     `json:"stage,omitempty"`
	MonetaryValue     float64       `json:"monetaryValue"`
	CustomFields      []CustomField `json:"customFields"`
}

func (o Opportunity) ResolvedPipelineName() string {
	if o.PipelineName != "" {
		return o.PipelineName
	}
	if o.Pipeline != nil {
		return o.Pipeline.Name
	}
	return ""
}

func (o Opportunity) ResolvedStageName() string {
	switch {
	case o.StageName != "":
		return o.StageName
	case o.Stage != nil && o.Stage.Name != "":
		return o.Stage.Name
	default:
		return o.PipelineStageName
	}
}

// jobIDFieldPatterns are the custom-field key fragments known to carry the
// externally-linked project-system job identifier.
var jobIDFieldPatterns = []string{"job_id", "job.id", "external_job"}

// ExternalJobID scans custom fields for the linked project-system job id.
// The key match is case-insensitive and the first populated match wins.
// Absence is not an error; callers treat "" as "no linked job".
func (o Opportunity) ExternalJobID() string {
	for _, cf := range o.CustomFields {
		key := strings.ToLower(cf.Label())
		for _, pattern := range jobIDFieldPatterns {
			if strings.Contains(key, pattern) {
				if s := strings.TrimSpace(stringify(cf.Value)); s != "" {
					return s
				}
				break
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// ContactSummary is the narrow projection returned by contact search.
type ContactSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
}

// PipelineStage is one stage of a sales pipeline.
type PipelineStage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Pipeline is a sales pipeline definition.
type Pipeline struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Stages []PipelineStage `json:"stages"`
}
