// Package crm is the REST client for the CRM backend. It exposes the narrow
// read/write operations the assistant consumes; every call returns either
// the structured payload or a wrapped transport/status error that callers
// recover from at the fetcher boundary.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	metricsx "github.com/kingswood/clienthub/pkg/metrics"
)

const maxResponseSizeBytes = 4 << 20

type Config struct {
	BaseURL    string        `envconfig:"BASE_URL" split_words:"true" required:"true"`
	APIKey     string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	LocationID string        `envconfig:"LOCATION_ID" split_words:"true" required:"true"`
	APIVersion string        `envconfig:"API_VERSION" split_words:"true" default:"2021-07-28"`
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
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
	baseURL    string
	apiKey     string
	locationID string
	apiVersion string
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("crm base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid crm base url: %w", err)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("crm api key is required")
	}
	locationID := strings.TrimSpace(cfg.LocationID)
	if locationID == "" {
		return nil, errors.New("crm location id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	apiVersion := strings.TrimSpace(cfg.APIVersion)
	if apiVersion == "" {
		apiVersion = "2021-07-28"
	}

	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		locationID: locationID,
		apiVersion: apiVersion,
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

// GetContact returns the full contact profile as a loosely-typed record so
// the formatter's catch-all pass sees every populated field.
func (c *Client) GetContact(ctx context.Context, contactID string) (map[string]any, error) {
	var raw map[string]any
	if err := c.get(ctx, "get_contact", "/contacts/"+url.PathEscape(contactID), nil, &raw); err != nil {
		return nil, err
	}
	if nested, ok := raw["contact"].(map[string]any); ok {
		return nested, nil
	}
	return raw, nil
}

func (c *Client) SearchContacts(ctx context.Context, query string) ([]ContactSummary, error) {
	q := url.Values{}
	q.Set("locationId", c.locationID)
	q.Set("query", query)
	q.Set("limit", "10")

	var out struct {
		Contacts []map[string]any `json:"contacts"`
	}
	if err := c.get(ctx, "search_contacts", "/contacts/", q, &out); err != nil {
		return nil, err
	}

	summaries := make([]ContactSummary, 0, len(out.Contacts))
	for _, contact := range out.Contacts {
		summaries = append(summaries, ContactSummary{
			ID:          stringField(contact, "id"),
			Name:        strings.TrimSpace(stringField(contact, "firstName") + " " + stringField(contact, "lastName")),
			Email:       stringField(contact, "email"),
			Phone:       stringField(contact, "phone"),
			CompanyName: stringField(contact, "companyName"),
		})
	}
	return summaries, nil
}

func (c *Client) ListNotes(ctx context.Context, contactID string) ([]Note, error) {
	var out struct {
		Notes []Note `json:"notes"`
	}
	if err := c.get(ctx, "list_notes", "/contacts/"+url.PathEscape(contactID)+"/notes", nil, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

func (c *Client) CreateNote(ctx context.Context, contactID, body string) error {
	payload := map[string]string{"body": body}
	return c.post(ctx, "create_note", "/contacts/"+url.PathEscape(contactID)+"/notes", payload, nil)
}

func (c *Client) ListTasks(ctx context.Context, contactID string) ([]Task, error) {
	var out struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.get(ctx, "list_tasks", "/contacts/"+url.PathEscape(contactID)+"/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) SearchConversations(ctx context.Context, contactID string) ([]Conversation, error) {
	q := url.Values{}
	q.Set("locationId", c.locationID)
	q.Set("contactId", contactID)

	var out struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.get(ctx, "search_conversations", "/conversations/search", q, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

func (c *Client) ListMessages(ctx context.Context, conversationID string, limit int) ([]ConversationMessage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out struct {
		Messages []ConversationMessage `json:"messages"`
	}
	err := c.get(ctx, "list_messages", "/conversations/"+url.PathEscape(conversationID)+"/messages", q, &out)
	if err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) ListOpportunities(ctx context.Context, contactID string) ([]Opportunity, error) {
	q := url.Values{}
	q.Set("location_id", c.locationID)
	q.Set("contact_id", contactID)

	var out struct {
		Opportunities []Opportunity `json:"opportunities"`
	}
	if err := c.get(ctx, "list_opportunities", "/opportunities/search", q, &out); err != nil {
		return nil, err
	}
	return out.Opportunities, nil
}

func (c *Client) GetOpportunity(ctx context.Context, opportunityID string) (*Opportunity, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "get_opportunity", "/opportunities/"+url.PathEscape(opportunityID), nil, &raw); err != nil {
		return nil, err
	}

	var envelope struct {
		Opportunity *Opportunity `json:"opportunity"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Opportunity != nil {
		return envelope.Opportunity, nil
	}

	var opp Opportunity
	if err := json.Unmarshal(raw, &opp); err != nil {
		return nil, fmt.Errorf("decode opportunity: %w", err)
	}
	return &opp, nil
}

func (c *Client) ListPipelines(ctx context.Context) ([]Pipeline, error) {
	q := url.Values{}
	q.Set("locationId", c.locationID)

	var out struct {
		Pipelines []Pipeline `json:"pipelines"`
	}
	if err := c.get(ctx, "list_pipelines", "/opportunities/pipelines", q, &out); err != nil {
		return nil, err
	}
	return out.Pipelines, nil
}

func (c *Client) get(ctx context.Context, operation, path string, query url.Values, out any) error {
	return c.do(ctx, operation, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, operation, path string, body, out any) error {
	return c.do(ctx, operation, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, method, path, query, body, out)
	metricsx.ObserveGatewayCall("crm", operation, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("crm %s: %w", operation, err)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.apiVersion != "" {
		req.Header.Set("Version", c.apiVersion)
	}

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

func stringField(record map[string]any, key string) string {
	s, _ := record[key].(string)
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
