// Package bus is the mailbox the recruiter agents use to talk to each other.
//
// Messages are rows in the store. Send always appends; Receive never changes
// state; a message only becomes read through an explicit MarkRead, so a
// consumer can inspect its inbox before committing to having handled it.
package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/schemas"
)

// Agent names
const (
	AgentJack  = "Jack"
	AgentJill  = "Jill"
	AgentScout = "Scout"
)

// Agents lists every agent that owns a mailbox.
var Agents = []string{AgentJack, AgentJill, AgentScout}

// KnownAgent reports whether name is one of Agents.
func KnownAgent(name string) bool {
	for _, a := range Agents {
		if a == name {
			return true
		}
	}
	return false
}

// Message types. The vocabulary is open: unknown types are stored and
// delivered untouched.
const (
	TypeCandidateProfile        = "candidate_profile"
	TypeJobSpec                 = "job_spec"
	TypeCandidateRecommendation = "candidate_recommendation"
	TypeJobRecommendation       = "job_recommendation"
	TypeInternalMatchFound      = "internal_match_found"
	TypeOutreachOpportunity     = "outreach_opportunity"
	TypeJobShortlist            = "job_shortlist"
	TypeMatchSuggestion         = "match_suggestion"
	TypeNegotiationResult       = "negotiation_result"
)

// Store is the subset of *db.DB the bus needs.
type Store interface {
	InsertMessage(ctx context.Context, in *db.MessageInput) (*db.AgentMessage, error)
	GetMessage(ctx context.Context, id string) (*db.AgentMessage, error)
	ListMessages(ctx context.Context, filter db.MessageFilter) ([]db.AgentMessage, error)
	MarkMessageRead(ctx context.Context, id string) error
	CountUnread(ctx context.Context, agent string) (int, error)
}

// Bus sends and receives agent messages.
type Bus struct {
	store Store
}

// New creates a Bus over store
func New(store Store) *Bus {
	return &Bus{store: store}
}

// ReceiveOptions filters Receive.
type ReceiveOptions struct {
	// IncludeRead also returns messages that were already marked read.
	IncludeRead bool
	// Type restricts results to one message type.
	Type string
	// Limit caps the number of messages returned; zero means no cap.
	Limit int
}

// Send appends a new unread message and returns its id. Metadata of known
// message types is checked against its schema before anything is written.
func (b *Bus) Send(ctx context.Context, from, to, msgType, content string, metadata map[string]any) (string, error) {
	if schemas.Has(msgType) && metadata != nil {
		if err := schemas.Validate(msgType, metadata); err != nil {
			return "", fmt.Errorf("invalid %s metadata: %w", msgType, err)
		}
	}
	msg, err := b.store.InsertMessage(ctx, &db.MessageInput{
		FromAgent: from,
		ToAgent:   to,
		Type:      msgType,
		Content:   content,
		Metadata:  metadata,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

// Receive returns messages addressed to agent, newest first. Unread only
// unless opts.IncludeRead is set. It does not mark anything read.
func (b *Bus) Receive(ctx context.Context, agent string, opts ReceiveOptions) ([]db.AgentMessage, error) {
	msgs, err := b.store.ListMessages(ctx, db.MessageFilter{
		ToAgent:     agent,
		Type:        opts.Type,
		UnreadOnly:  !opts.IncludeRead,
		NewestFirst: true,
		Limit:       opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages for %s: %w", agent, err)
	}
	return msgs, nil
}

// Get returns one message, or nil if the id is unknown.
func (b *Bus) Get(ctx context.Context, id string) (*db.AgentMessage, error) {
	return b.store.GetMessage(ctx, id)
}

// MarkRead marks a message consumed. Marking an already-read message is a
// no-op; an unknown id returns db.ErrNotFound.
func (b *Bus) MarkRead(ctx context.Context, id string) error {
	return b.store.MarkMessageRead(ctx, id)
}

// Unread counts unread messages for agent.
func (b *Bus) Unread(ctx context.Context, agent string) (int, error) {
	return b.store.CountUnread(ctx, agent)
}

// Metadata converts a struct with json tags into a metadata map.
func Metadata(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("metadata must be a JSON object: %w", err)
	}
	return m, nil
}

// OfType returns every message of msgType regardless of recipient or read
// state, oldest first. Used for discovery of announced artifacts.
func (b *Bus) OfType(ctx context.Context, msgType string) ([]db.AgentMessage, error) {
	msgs, err := b.store.ListMessages(ctx, db.MessageFilter{Type: msgType})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s messages: %w", msgType, err)
	}
	return msgs, nil
}

// All returns every message on the bus, oldest first.
func (b *Bus) All(ctx context.Context) ([]db.AgentMessage, error) {
	msgs, err := b.store.ListMessages(ctx, db.MessageFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}
