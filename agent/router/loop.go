package router

import (
	"context"

	"golang.org/x/sync/errgroup"

	contractx "github.com/kingswood/clienthub/agent/contract"
	metricsx "github.com/kingswood/clienthub/pkg/metrics"
)

// maxToolIterations bounds the model/tool exchange. When the cap is reached
// the last text content wins, or the placeholder if there was none.
const maxToolIterations = 5

const noReplyPlaceholder = "No response generated."

// runLoop drives the model until it answers without tool calls or the
// iteration cap is hit. Tool calls within one round execute concurrently;
// their results are appended in call order.
func (r *Router) runLoop(ctx context.Context, agent contractx.Agent, sc contractx.SessionContext, messages []contractx.Message) (string, error) {
	req := contractx.ChatRequest{
		System:   agent.SystemPrompt(sc),
		Messages: messages,
		Tools:    agent.Tools(),
	}

	lastText := ""
	for i := 0; i < maxToolIterations; i++ {
		msg, err := r.model.Complete(ctx, req)
		if err != nil {
			return "", err
		}
		if msg.Content != "" {
			lastText = msg.Content
		}
		if len(msg.ToolCalls) == 0 {
			break
		}

		results := make([]contractx.Message, len(msg.ToolCalls))
		g, gctx := errgroup.WithContext(ctx)
		for j, call := range msg.ToolCalls {
			g.Go(func() error {
				metricsx.IncrementToolExecution(agent.Name(), call.Name)
				results[j] = contractx.Message{
					Role:       contractx.RoleTool,
					Content:    agent.ExecuteTool(gctx, call, sc),
					ToolCallID: call.ID,
				}
				return nil
			})
		}
		g.Wait() //nolint:errcheck // tool execution never returns errors

		req.Messages = append(req.Messages, msg)
		req.Messages = append(req.Messages, results...)
	}

	if lastText == "" {
		return noReplyPlaceholder, nil
	}
	return lastText, nil
}
