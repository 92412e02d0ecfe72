package projectsys

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// capture decodes the {"query": ...} envelope each call posts.
type capture struct {
	Query map[string]any `json:"query"`
}

func newTestClient(t *testing.T, respond func(q capture) any) (*Client, *[]capture) {
	t.Helper()

	var seen []capture
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var q capture
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		seen = append(seen, q)
		json.NewEncoder(w).Encode(respond(q))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{URL: srv.URL, GrantKey: "grant-1"}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return client, &seen
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{GrantKey: "g"}); err == nil {
		t.Error("missing url accepted")
	}
	if _, err := NewClient(Config{URL: "https://x"}); err == nil {
		t.Error("missing grant key accepted")
	}
}

func TestQueryCarriesGrantKey(t *testing.T) {
	t.Parallel()

	client, seen := newTestClient(t, func(capture) any {
		return map[string]any{"jobs": map[string]any{"nodes": []any{}}}
	})

	if _, err := client.ListActiveJobs(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	dollar, _ := (*seen)[0].Query["$"].(map[string]any)
	if dollar["grantKey"] != "grant-1" {
		t.Fatalf("grant key missing: %v", (*seen)[0].Query)
	}
}

func TestListActiveJobsFiltersOpen(t *testing.T) {
	t.Parallel()

	client, seen := newTestClient(t, func(capture) any {
		return map[string]any{"jobs": map[string]any{"nodes": []map[string]any{
			{"id": "j1", "name": "Smith Addition", "number": "101", "status": "In Production"},
		}}}
	})

	jobs, err := client.ListActiveJobs(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].Number != "101" {
		t.Fatalf("jobs = %+v", jobs)
	}

	raw, _ := json.Marshal((*seen)[0].Query)
	for _, want := range []string{`"closedOn":{"eq":null}`, `"createdAt":"DESC"`, `"first":30`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("query missing %s: %s", want, raw)
		}
	}
}

func TestListCustomersAndVendorsFilterByType(t *testing.T) {
	t.Parallel()

	client, seen := newTestClient(t, func(capture) any {
		return map[string]any{"accounts": map[string]any{"nodes": []map[string]any{
			{"id": "a1", "name": "Acme"},
		}}}
	})

	if _, err := client.ListCustomers(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := client.ListVendors(context.Background()); err != nil {
		t.Fatal(err)
	}

	first, _ := json.Marshal((*seen)[0].Query)
	second, _ := json.Marshal((*seen)[1].Query)
	if !strings.Contains(string(first), `"eq":"customer"`) {
		t.Errorf("customer filter missing: %s", first)
	}
	if !strings.Contains(string(second), `"eq":"vendor"`) {
		t.Errorf("vendor filter missing: %s", second)
	}
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	client, seen := newTestClient(t, func(capture) any {
		return map[string]any{"createTask": map[string]any{
			"createdTask": map[string]any{"id": "t1", "name": "Order windows"},
		}}
	})

	created, err := client.CreateTask(context.Background(), CreateTaskRequest{
		JobID:       "job-9",
		Name:        "Order windows",
		Description: "Anderson 400",
		EndDate:     "2026-09-15",
		AssigneeIDs: []string{"m1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != "t1" || created.Name != "Order windows" {
		t.Fatalf("created = %+v", created)
	}

	raw, _ := json.Marshal((*seen)[0].Query)
	for _, want := range []string{
		`"targetId":"job-9"`,
		`"targetType":"job"`,
		`"description":"Anderson 400"`,
		`"endDate":"2026-09-15"`,
		`"assignedMembershipIds":["m1"]`,
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("query missing %s: %s", want, raw)
		}
	}
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(capture) any { return map[string]any{} })

	if _, err := client.CreateTask(context.Background(), CreateTaskRequest{Name: "x"}); err == nil {
		t.Error("missing job id accepted")
	}
	if _, err := client.CreateTask(context.Background(), CreateTaskRequest{JobID: "j"}); err == nil {
		t.Error("missing name accepted")
	}
}

func TestCreateTaskEmptyResponseIsError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(capture) any {
		return map[string]any{"createTask": map[string]any{"createdTask": map[string]any{}}}
	})

	_, err := client.CreateTask(context.Background(), CreateTaskRequest{JobID: "j", Name: "n"})
	if err == nil || !strings.Contains(err.Error(), "no task id") {
		t.Fatalf("err = %v", err)
	}
}

func TestQueryErrorWrapsOperation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{URL: srv.URL, GrantKey: "g"}, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.ListTeamMembers(context.Background())
	if err == nil || !strings.Contains(err.Error(), "project-system list_team_members") {
		t.Fatalf("err = %v", err)
	}
}
