// Package projectsys is the client for the project-management backend. The
// backend speaks a single-endpoint query language: every call POSTs a nested
// query object wrapped in {"query": ...} with the grant key under "$".
package projectsys

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	metricsx "github.com/kingswood/clienthub/pkg/metrics"
)

const maxResponseSizeBytes = 4 << 20

type Config struct {
	URL      string        `envconfig:"URL" split_words:"true" required:"true"`
	GrantKey string        `envconfig:"GRANT_KEY" split_words:"true" required:"true"`
	Timeout  time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// Option customizes Client.
type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

type Client struct {
	endpoint   string
	grantKey   string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, errors.New("project-system url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid project-system url: %w", err)
	}
	grantKey := strings.TrimSpace(cfg.GrantKey)
	if grantKey == "" {
		return nil, errors.New("project-system grant key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		endpoint: endpoint,
		grantKey: grantKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// ListActiveJobs returns the newest open jobs, capped at limit.
func (c *Client) ListActiveJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 30
	}

	var out struct {
		Jobs struct {
			Nodes []Job `json:"nodes"`
		} `json:"jobs"`
	}
	err := c.query(ctx, "list_active_jobs", map[string]any{
		"jobs": map[string]any{
			"$": map[string]any{
				"first":   limit,
				"where":   map[string]any{"closedOn": map[string]any{"eq": nil}},
				"orderBy": map[string]any{"createdAt": "DESC"},
			},
			"nodes": map[string]any{
				"id":        map[string]any{},
				"name":      map[string]any{},
				"number":    map[string]any{},
				"status":    map[string]any{},
				"createdAt": map[string]any{},
			},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Jobs.Nodes, nil
}

func (c *Client) ListTeamMembers(ctx context.Context) ([]TeamMember, error) {
	var out struct {
		Memberships struct {
			Nodes []TeamMember `json:"nodes"`
		} `json:"memberships"`
	}
	err := c.query(ctx, "list_team_members", map[string]any{
		"memberships": map[string]any{
			"nodes": map[string]any{
				"id":   map[string]any{},
				"role": map[string]any{},
				"user": map[string]any{
					"name":      map[string]any{},
					"firstName": map[string]any{},
					"lastName":  map[string]any{},
					"email":     map[string]any{},
				},
			},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Memberships.Nodes, nil
}

// ListMembers returns membership id + display name pairs for assignment.
func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	var out struct {
		Memberships struct {
			Nodes []struct {
				ID   string `json:"id"`
				User struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"user"`
			} `json:"nodes"`
		} `json:"memberships"`
	}
	err := c.query(ctx, "list_members", map[string]any{
		"memberships": map[string]any{
			"nodes": map[string]any{
				"id":   map[string]any{},
				"user": map[string]any{"id": map[string]any{}, "name": map[string]any{}},
			},
		},
	}, &out)
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(out.Memberships.Nodes))
	for _, n := range out.Memberships.Nodes {
		members = append(members, Member{ID: n.ID, Name: n.User.Name})
	}
	return members, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]Account, error) {
	return c.listAccounts(ctx, "list_customers", "customer")
}

func (c *Client) ListVendors(ctx context.Context) ([]Account, error) {
	return c.listAccounts(ctx, "list_vendors", "vendor")
}

func (c *Client) listAccounts(ctx context.Context, operation, accountType string) ([]Account, error) {
	var out struct {
		Accounts struct {
			Nodes []Account `json:"nodes"`
		} `json:"accounts"`
	}
	err := c.query(ctx, operation, map[string]any{
		"accounts": map[string]any{
			"$": map[string]any{
				"where": map[string]any{"type": map[string]any{"eq": accountType}},
			},
			"nodes": map[string]any{
				"id":    map[string]any{},
				"name":  map[string]any{},
				"email": map[string]any{},
				"phone": map[string]any{},
			},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Accounts.Nodes, nil
}

// CreateTask creates a task on the given job and returns the created id and
// name. A response without a created id is treated as a failure.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (CreatedTask, error) {
	jobID := strings.TrimSpace(req.JobID)
	if jobID == "" {
		return CreatedTask{}, errors.New("project-system create_task: job id is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CreatedTask{}, errors.New("project-system create_task: task name is required")
	}

	args := map[string]any{
		"targetId":   jobID,
		"targetType": "job",
		"name":       name,
	}
	if req.Description != "" {
		args["description"] = req.Description
	}
	if req.StartDate != "" {
		args["startDate"] = req.StartDate
	}
	if req.EndDate != "" {
		args["endDate"] = req.EndDate
	}
	if len(req.AssigneeIDs) > 0 {
		args["assignedMembershipIds"] = req.AssigneeIDs
	}

	var out struct {
		CreateTask struct {
			CreatedTask CreatedTask `json:"createdTask"`
		} `json:"createTask"`
	}
	err := c.query(ctx, "create_task", map[string]any{
		"createTask": map[string]any{
			"$": args,
			"createdTask": map[string]any{
				"id":   map[string]any{},
				"name": map[string]any{},
			},
		},
	}, &out)
	if err != nil {
		return CreatedTask{}, err
	}

	created := out.CreateTask.CreatedTask
	if created.ID == "" {
		return CreatedTask{}, errors.New("project-system create_task: no task id in response")
	}
	return created, nil
}

func (c *Client) query(ctx context.Context, operation string, query map[string]any, out any) error {
	start := time.Now()
	err := c.queryOnce(ctx, query, out)
	metricsx.ObserveGatewayCall("project-system", operation, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("project-system %s: %w", operation, err)
	}
	return nil
}

func (c *Client) queryOnce(ctx context.Context, query map[string]any, out any) error {
	wrapped := map[string]any{"$": map[string]any{"grantKey": c.grantKey}}
	for k, v := range query {
		wrapped[k] = v
	}

	body, err := json.Marshal(map[string]any{"query": wrapped})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("http status=%d body=%s", resp.StatusCode, truncate(string(raw), 200))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
