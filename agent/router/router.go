// Package router selects the agent for each exchange, injects fetched
// context into the conversation, and drives the bounded tool loop against
// the model.
package router

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/kingswood/clienthub/agent/contract"
	logx "github.com/kingswood/clienthub/pkg/logger"
	metricsx "github.com/kingswood/clienthub/pkg/metrics"
)

// Router routes one conversation exchange to the best-scoring agent. The
// registration order is fixed and the first agent is the default: ties and
// all-equal scores resolve to it.
type Router struct {
	agents []contractx.Agent
	model  contractx.ChatModel
}

// New builds a Router over the given agents, in registration order. At
// least one agent is required; the first is the default.
func New(model contractx.ChatModel, agents ...contractx.Agent) (*Router, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("%w: at least one agent is required", contractx.ErrValidation)
	}
	return &Router{agents: agents, model: model}, nil
}

// Select scores the message against every agent and returns the winner.
// Only a strictly higher score displaces the current leader, so the default
// wins ties.
func (r *Router) Select(message string) contractx.Agent {
	best := r.agents[0]
	bestScore := best.Score(message)
	for _, a := range r.agents[1:] {
		if s := a.Score(message); s > bestScore {
			best, bestScore = a, s
		}
	}
	return best
}

// Route runs one full exchange: agent selection, context fetch and
// injection, then the tool loop until the model answers in plain text.
func (r *Router) Route(ctx context.Context, sc contractx.SessionContext, turns []contractx.Turn) (contractx.Result, error) {
	lastMessage := latestUserMessage(turns)
	if lastMessage == "" {
		return contractx.Result{}, fmt.Errorf("%w: conversation has no user message", contractx.ErrValidation)
	}

	agent := r.Select(lastMessage)
	metricsx.IncrementAgentSelection(agent.Name())
	log := logx.Component("router").With().Str("agent", agent.Name()).Logger()
	log.Debug().Int("turns", len(turns)).Msg("agent selected")

	data := agent.FetchContext(ctx, sc, lastMessage)
	messages := assemble(turns, sc, data)

	reply, err := r.runLoop(ctx, agent, sc, messages)
	if err != nil {
		return contractx.Result{}, err
	}
	return contractx.Result{AgentName: agent.Name(), Reply: reply}, nil
}

func latestUserMessage(turns []contractx.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == contractx.RoleUser {
			return strings.TrimSpace(turns[i].Content)
		}
	}
	return ""
}
