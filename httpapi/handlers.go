package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/agent"
	"github.com/tailored-agentic-units/threads/conversation"
	"github.com/tailored-agentic-units/threads/core/protocol"
	"github.com/tailored-agentic-units/threads/kernel"
	"github.com/tailored-agentic-units/threads/registry"
)

type conversationBody struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Messages     []protocol.Message `json:"messages"`
	LastModified time.Time          `json:"last_modified"`
}

func newConversationBody(c conversation.Conversation) conversationBody {
	msgs := c.Messages
	if msgs == nil {
		msgs = []protocol.Message{}
	}
	return conversationBody{
		ID:           c.ID,
		Title:        c.Title,
		Messages:     msgs,
		LastModified: c.LastModified,
	}
}

type stateBody struct {
	Active        *conversationBody  `json:"active"`
	Conversations []registry.Summary `json:"conversations"`
}

type messageRequest struct {
	Content string `json:"content" binding:"required"`
}

type turnBody struct {
	Result *kernel.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (s *Server) getState(c *gin.Context) {
	view := s.ws.State()

	body := stateBody{Conversations: view.Conversations}
	if body.Conversations == nil {
		body.Conversations = []registry.Summary{}
	}
	if view.Active != nil {
		active := newConversationBody(*view.Active)
		body.Active = &active
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listConversations(c *gin.Context) {
	summaries := s.ws.State().Conversations
	if summaries == nil {
		summaries = []registry.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

func (s *Server) createConversation(c *gin.Context) {
	conv, err := s.ws.NewConversation(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newConversationBody(conv))
}

func (s *Server) getConversation(c *gin.Context) {
	conv, err := s.ws.Conversation(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newConversationBody(conv))
}

func (s *Server) selectConversation(c *gin.Context) {
	if err := s.ws.Select(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteConversation(c *gin.Context) {
	if err := s.ws.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) postMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.ws.Submit(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		c.JSON(statusFor(err), turnBody{Result: result, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, turnBody{Result: result})
}

func (s *Server) listAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": s.ws.Agents().List()})
}

func (s *Server) selectAgent(c *gin.Context) {
	if err := s.ws.UseAgent(c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var (
		modelErr   *kernel.ModelError
		persistErr *kernel.PersistenceError
	)
	switch {
	case errors.Is(err, kernel.ErrNotFound), errors.Is(err, agent.ErrAgentNotFound):
		return http.StatusNotFound
	case errors.Is(err, kernel.ErrTurnInProgress):
		return http.StatusConflict
	case errors.As(err, &modelErr):
		return http.StatusBadGateway
	case errors.As(err, &persistErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
