package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	contractx "github.com/kingswood/clienthub/agent/contract"
	routerx "github.com/kingswood/clienthub/agent/router"
	transcriptx "github.com/kingswood/clienthub/agent/transcript"
	authx "github.com/kingswood/clienthub/pkg/auth"
	crmx "github.com/kingswood/clienthub/pkg/crm"
	projectsysx "github.com/kingswood/clienthub/pkg/projectsys"
)

type fakeCRM struct {
	notes []string
	opps  []crmx.Opportunity
}

func (f *fakeCRM) GetContact(context.Context, string) (map[string]any, error) {
	return map[string]any{}, nil
}

func (f *fakeCRM) SearchContacts(context.Context, string) ([]crmx.ContactSummary, error) {
	return []crmx.ContactSummary{{ID: "c1", Name: "Dana Reyes"}}, nil
}

func (f *fakeCRM) ListNotes(context.Context, string) ([]crmx.Note, error) { return nil, nil }

func (f *fakeCRM) CreateNote(_ context.Context, _ string, body string) error {
	f.notes = append(f.notes, body)
	return nil
}

func (f *fakeCRM) ListTasks(context.Context, string) ([]crmx.Task, error) { return nil, nil }

func (f *fakeCRM) SearchConversations(context.Context, string) ([]crmx.Conversation, error) {
	return nil, nil
}

func (f *fakeCRM) ListMessages(context.Context, string, int) ([]crmx.ConversationMessage, error) {
	return nil, nil
}

func (f *fakeCRM) ListOpportunities(context.Context, string) ([]crmx.Opportunity, error) {
	return f.opps, nil
}

func (f *fakeCRM) GetOpportunity(context.Context, string) (*crmx.Opportunity, error) {
	return &crmx.Opportunity{}, nil
}

func (f *fakeCRM) ListPipelines(context.Context) ([]crmx.Pipeline, error) {
	return []crmx.Pipeline{{ID: "p1", Name: "Sales"}}, nil
}

type fakeProjectGateway struct{}

func (fakeProjectGateway) ListActiveJobs(context.Context, int) ([]projectsysx.Job, error) {
	return nil, nil
}

func (fakeProjectGateway) ListTeamMembers(context.Context) ([]projectsysx.TeamMember, error) {
	return nil, nil
}

func (fakeProjectGateway) ListMembers(context.Context) ([]projectsysx.Member, error) {
	return []projectsysx.Member{{ID: "m1", Name: "Pat Doyle"}}, nil
}

func (fakeProjectGateway) ListCustomers(context.Context) ([]projectsysx.Account, error) {
	return nil, nil
}

func (fakeProjectGateway) ListVendors(context.Context) ([]projectsysx.Account, error) {
	return nil, nil
}

func (fakeProjectGateway) CreateTask(context.Context, projectsysx.CreateTaskRequest) (projectsysx.CreatedTask, error) {
	return projectsysx.CreatedTask{}, nil
}

type fakeModel struct {
	calls int
	reply string
}

func (m *fakeModel) Complete(context.Context, contractx.ChatRequest) (contractx.Message, error) {
	m.calls++
	return contractx.Message{Role: contractx.RoleAssistant, Content: m.reply}, nil
}

type fakeAgent struct{}

func (fakeAgent) Name() string { return "know-it-all" }
func (fakeAgent) Description() string { return "test agent" }
func (fakeAgent) Score(string) float64 { return 0.5 }
func (fakeAgent) SystemPrompt(contractx.SessionContext) string { return "sys" }
func (fakeAgent) Tools() []contractx.ToolSpec { return nil }
func (fakeAgent) FetchContext(context.Context, contractx.SessionContext, string) string {
	return ""
}
func (fakeAgent) ExecuteTool(context.Context, contractx.ToolCall, contractx.SessionContext) string {
	return "{}"
}

type env struct {
	server *Server
	crm    *fakeCRM
	model  *fakeModel
	token  string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	auth, err := authx.NewService(authx.Config{PIN: "4321", Secret: "test-secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	model := &fakeModel{reply: "hello there"}
	rt, err := routerx.New(model, fakeAgent{})
	if err != nil {
		t.Fatal(err)
	}
	crm := &fakeCRM{}
	s := New(Config{Debug: true}, auth, rt, transcriptx.NewIngester(crm), crm, &fakeProjectGateway{})

	token, err := auth.IssueToken("4321")
	if err != nil {
		t.Fatal(err)
	}
	return &env{server: s, crm: crm, model: model, token: token}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAuthEndpoint(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/auth", "", map[string]string{"pin": "0000"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong pin: status %d, want 401", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/api/auth", "", map[string]string{"pin": "4321"})
	if rec.Code != http.StatusOK {
		t.Fatalf("right pin: status %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["token"] == "" {
		t.Fatalf("no token in response: %s", rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/chat", "", map[string]any{"messages": []any{}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/api/chat", "not-a-token", map[string]any{"messages": []any{}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d, want 401", rec.Code)
	}
}

func TestChatRejectsEmptyMessagesBeforeModelCall(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/chat", e.token, map[string]any{"messages": []any{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if e.model.calls != 0 {
		t.Fatalf("model called %d times for invalid input", e.model.calls)
	}
}

func TestChatHappyPath(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/chat", e.token, map[string]any{
		"messages":   []map[string]string{{"role": "user", "content": "hi"}},
		"clientId":   "c1",
		"clientName": "Dana Reyes",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Agent string `json:"agent"`
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Agent != "know-it-all" || resp.Reply != "hello there" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTranscriptEndpoint(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/transcripts", e.token, map[string]string{
		"contactId": "c1",
		"type":      "Meeting",
		"date":      "3/4/2026",
		"content":   "Speaker A: hello",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(e.crm.notes) != 1 || !strings.Contains(e.crm.notes[0], "Speaker A: hello") {
		t.Fatalf("note not stored: %v", e.crm.notes)
	}
}

func TestOpportunitiesIncludeLinkedJob(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.crm.opps = []crmx.Opportunity{{
		ID:        "opp-1",
		Name:      "Kitchen Remodel",
		StageName: "In-Design",
		CustomFields: []crmx.CustomField{
			{FieldKey: "opportunity.jt_job_id", Value: "job-42"},
		},
	}}

	rec := e.do(t, http.MethodGet, "/api/opportunities?contactId=c1", e.token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{`"jobId":"job-42"`, `"channel":"project-system"`} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s in %s", want, body)
		}
	}
}

func TestContactsRequireQuery(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	if rec := e.do(t, http.MethodGet, "/api/contacts", e.token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	rec := e.do(t, http.MethodGet, "/api/contacts?query=dana", e.token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Dana Reyes") {
		t.Fatalf("search failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMembersEndpoint(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/api/members", e.token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Pat Doyle") {
		t.Fatalf("members lookup failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	if rec := e.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}
