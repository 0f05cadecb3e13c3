// Package httpapi exposes the conversation workspace as a JSON API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/agent"
	"github.com/tailored-agentic-units/threads/conversation"
	"github.com/tailored-agentic-units/threads/kernel"
	"github.com/tailored-agentic-units/threads/observability"
)

// EventRequest is emitted once per handled request.
const EventRequest observability.EventType = "http.request"

const shutdownTimeout = 5 * time.Second

// Workspace is the subset of *kernel.Kernel the API serves.
type Workspace interface {
	State() kernel.View
	Conversation(id string) (conversation.Conversation, error)
	NewConversation(ctx context.Context) (conversation.Conversation, error)
	Select(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Submit(ctx context.Context, id, text string) (*kernel.Result, error)
	Agents() *agent.Registry
	UseAgent(name string) error
}

// Server routes HTTP requests to a Workspace.
type Server struct {
	ws       Workspace
	observer observability.Observer
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithObserver sets the observer receiving request events.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// New creates a Server for ws.
func New(ws Workspace, opts ...Option) *Server {
	s := &Server{
		ws:       ws,
		observer: observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.logRequests())
	s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() {
	s.engine.GET("/state", s.getState)

	convs := s.engine.Group("/conversations")
	convs.GET("", s.listConversations)
	convs.POST("", s.createConversation)
	convs.GET("/:id", s.getConversation)
	convs.DELETE("/:id", s.deleteConversation)
	convs.POST("/:id/select", s.selectConversation)
	convs.POST("/:id/messages", s.postMessage)

	agents := s.engine.Group("/agents")
	agents.GET("", s.listAgents)
	agents.POST("/:name/select", s.selectAgent)
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := observability.LevelVerbose
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = observability.LevelWarning
		}
		s.observer.OnEvent(c.Request.Context(), observability.Event{
			Type:      EventRequest,
			Level:     level,
			Timestamp: time.Now(),
			Source:    "httpapi",
			Data: map[string]any{
				"method":   c.Request.Method,
				"path":     c.FullPath(),
				"status":   c.Writer.Status(),
				"duration": time.Since(start).String(),
			},
		})
	}
}
