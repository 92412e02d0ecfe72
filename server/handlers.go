package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	contractx "github.com/kingswood/clienthub/agent/contract"
	authx "github.com/kingswood/clienthub/pkg/auth"
	logx "github.com/kingswood/clienthub/pkg/logger"
	metricsx "github.com/kingswood/clienthub/pkg/metrics"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type authRequest struct {
	PIN string `json:"pin" binding:"required"`
}

func (s *Server) handleAuth(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pin is required"})
		return
	}

	token, err := s.auth.IssueToken(req.PIN)
	if err != nil {
		if errors.Is(err, authx.ErrInvalidPIN) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid pin"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type chatRequest struct {
	Messages []contractx.Turn `json:"messages"`

	ClientID        string `json:"clientId"`
	ClientName      string `json:"clientName"`
	OpportunityID   string `json:"opportunityId"`
	OpportunityName string `json:"opportunityName"`
	JobID           string `json:"jobId"`
	PipelineStage   string `json:"pipelineStage"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metricsx.IncrementChatRequest("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	// Reject before touching any backend.
	if len(req.Messages) == 0 {
		metricsx.IncrementChatRequest("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages must not be empty"})
		return
	}

	sc := contractx.NewSessionContext(
		req.ClientID, req.ClientName,
		req.OpportunityID, req.OpportunityName,
		req.JobID, req.PipelineStage,
	)

	result, err := s.router.Route(c.Request.Context(), sc, req.Messages)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			metricsx.IncrementChatRequest("bad_request")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		metricsx.IncrementChatRequest("error")
		logx.Component("server").Error().Err(err).Msg("chat exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "assistant is unavailable"})
		return
	}

	metricsx.IncrementChatRequest("ok")
	c.JSON(http.StatusOK, gin.H{"agent": result.AgentName, "reply": result.Reply})
}

type transcriptRequest struct {
	ContactID string `json:"contactId" binding:"required"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	Content   string `json:"content" binding:"required"`
}

func (s *Server) handleTranscript(c *gin.Context) {
	var req transcriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contactId and content are required"})
		return
	}

	n, err := s.ingester.Ingest(c.Request.Context(), req.ContactID, req.Type, req.Date, req.Content)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logx.Component("server").Error().Err(err).Str("contact_id", req.ContactID).Msg("transcript ingest failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcript storage failed", "chunksWritten": n})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": n})
}

func (s *Server) handleContacts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	contacts, err := s.crm.SearchContacts(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "contact search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (s *Server) handleOpportunities(c *gin.Context) {
	contactID := strings.TrimSpace(c.Query("contactId"))
	if contactID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contactId is required"})
		return
	}

	opps, err := s.crm.ListOpportunities(c.Request.Context(), contactID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "opportunity lookup failed"})
		return
	}

	out := make([]gin.H, 0, len(opps))
	for _, o := range opps {
		out = append(out, gin.H{
			"id":            o.ID,
			"name":          o.Name,
			"status":        o.Status,
			"pipelineName":  o.ResolvedPipelineName(),
			"stageName":     o.ResolvedStageName(),
			"monetaryValue": o.MonetaryValue,
			"jobId":         o.ExternalJobID(),
			"channel":       contractx.ChannelForStage(o.ResolvedStageName()),
		})
	}
	c.JSON(http.StatusOK, gin.H{"opportunities": out})
}

// handleMembers lists assignable project-system memberships for the task
// assignee picker.
func (s *Server) handleMembers(c *gin.Context) {
	members, err := s.project.ListMembers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "member lookup failed"})
		return
	}
	out := make([]gin.H, 0, len(members))
	for _, m := range members {
		out = append(out, gin.H{"id": m.ID, "name": m.Name})
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

func (s *Server) handlePipelines(c *gin.Context) {
	pipelines, err := s.crm.ListPipelines(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "pipeline lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pipelines": pipelines})
}
