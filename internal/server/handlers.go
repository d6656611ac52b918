package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/server/middleware"
)

var validate = validator.New()

// SendMessageRequest is the body of POST /messages. The sender is always the
// authenticated agent.
type SendMessageRequest struct {
	To       string         `json:"to" validate:"required"`
	Type     string         `json:"message_type" validate:"required"`
	Content  string         `json:"content" validate:"required"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MessageResponse is one message as returned by the API.
type MessageResponse struct {
	ID        string         `json:"id"`
	FromAgent string         `json:"from_agent"`
	ToAgent   string         `json:"to_agent"`
	Type      string         `json:"message_type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

func toResponse(m *db.AgentMessage) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		FromAgent: m.FromAgent,
		ToAgent:   m.ToAgent,
		Type:      m.Type,
		Content:   m.Content,
		Metadata:  m.Metadata,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	from, err := middleware.Agent(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			s.fail(w, &ErrValidation{Field: verrs[0].Field(), Message: verrs[0].Tag()})
			return
		}
		s.fail(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}
	if !bus.KnownAgent(req.To) {
		s.fail(w, &ErrValidation{Field: "to", Message: "unknown agent " + req.To})
		return
	}

	id, err := s.bus.Send(r.Context(), from, req.To, req.Type, req.Content, req.Metadata)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]string{"id": id})
}

// handleListMessages serves GET /messages?unread_only=&type=&limit=.
// unread_only defaults to true.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	agent, err := middleware.Agent(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	opts := bus.ReceiveOptions{Type: q.Get("type")}
	if v := q.Get("unread_only"); v != "" {
		unreadOnly, err := strconv.ParseBool(v)
		if err != nil {
			s.fail(w, &ErrValidation{Field: "unread_only", Message: "must be a boolean"})
			return
		}
		opts.IncludeRead = !unreadOnly
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			s.fail(w, &ErrValidation{Field: "limit", Message: "must be a non-negative integer"})
			return
		}
		opts.Limit = limit
	}

	msgs, err := s.bus.Receive(r.Context(), agent, opts)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, toResponse(&msgs[i]))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"messages": out, "count": len(out)})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	agent, err := middleware.Agent(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	n, err := s.bus.Unread(r.Context(), agent)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]int{"unread": n})
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	msg, ok := s.ownMessage(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, toResponse(msg))
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	msg, ok := s.ownMessage(w, r)
	if !ok {
		return
	}
	if err := s.bus.MarkRead(r.Context(), msg.ID); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownMessage loads the {id} message and checks it is addressed to the
// authenticated agent. It writes the error response itself.
func (s *Server) ownMessage(w http.ResponseWriter, r *http.Request) (*db.AgentMessage, bool) {
	agent, err := middleware.Agent(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	id := r.PathValue("id")
	msg, err := s.bus.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	if msg == nil {
		s.errorResponse(w, http.StatusNotFound, "message not found: "+id)
		return nil, false
	}
	if msg.ToAgent != agent {
		s.fail(w, &ErrForbidden{Agent: agent, MessageID: id})
		return nil, false
	}
	return msg, true
}
