package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	contractx "github.com/kingswood/clienthub/agent/contract"
	logx "github.com/kingswood/clienthub/pkg/logger"
)

// Client adapts the OpenAI-compatible chat completions API to the
// contract.ChatModel interface.
type Client struct {
	api   openai.Client
	model string
	cfg   Config
}

var _ contractx.ChatModel = (*Client)(nil)

// NewClient validates cfg and builds the model client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	// OpenRouter attribution headers; harmless on other endpoints.
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	return &Client{
		api:   openai.NewClient(opts...),
		model: strings.TrimSpace(cfg.Model),
		cfg:   cfg,
	}, nil
}

// Complete runs one chat completion round-trip.
func (c *Client) Complete(ctx context.Context, req contractx.ChatRequest) (contractx.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.model),
		Messages:            c.buildMessages(req),
		MaxCompletionTokens: openai.Int(int64(c.cfg.MaxCompletionToken)),
		Temperature:         openai.Float(c.cfg.Temperature),
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return contractx.Message{}, fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.Message{}, fmt.Errorf("%w: empty choices", contractx.ErrModelInvoke)
	}

	msg := resp.Choices[0].Message
	out := contractx.Message{
		Role:    contractx.RoleAssistant,
		Content: msg.Content,
	}
	for _, tc := range msg.ToolCalls {
		input := map[string]any{}
		if args := tc.Function.Arguments; args != "" {
			if err := json.Unmarshal([]byte(args), &input); err != nil {
				// Leave the input empty; the tool layer reports the
				// missing fields back to the model.
				logx.Component("llm").Warn().
					Str("tool", tc.Function.Name).
					Err(err).
					Msg("tool call arguments are not valid json")
				input = map[string]any{}
			}
		}
		out.ToolCalls = append(out.ToolCalls, contractx.ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		})
	}
	return out, nil
}

func (c *Client) buildMessages(req contractx.ChatRequest) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case contractx.RoleUser:
			msgs = append(msgs, openai.UserMessage(m.Content))
		case contractx.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				msgs = append(msgs, openai.AssistantMessage(m.Content))
				continue
			}
			msgs = append(msgs, assistantWithToolCalls(m))
		case contractx.RoleTool:
			msgs = append(msgs, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return msgs
}

func assistantWithToolCalls(m contractx.Message) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if m.Content != "" {
		assistant.Content.OfString = openai.String(m.Content)
	}
	for _, tc := range m.ToolCalls {
		args, err := json.Marshal(tc.Input)
		if err != nil {
			args = []byte("{}")
		}
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: string(args),
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func buildTools(specs []contractx.ToolSpec) []openai.ChatCompletionToolUnionParam {
	tools := make([]openai.ChatCompletionToolUnionParam, 0, len(specs))
	for _, s := range specs {
		required := s.Required
		if required == nil {
			required = []string{}
		}
		tools = append(tools, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        s.Name,
			Description: openai.String(s.Description),
			Parameters: shared.FunctionParameters{
				"type":       "object",
				"properties": s.Parameters,
				"required":   required,
			},
		}))
	}
	return tools
}
