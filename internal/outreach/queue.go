// Package outreach manages messages a human sends by hand on LinkedIn.
//
// Items move one way, from pending to sent. Skipping an item during review
// leaves it pending so it comes back on the next pass.
package outreach

import (
	"context"
	"fmt"
	"log"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
)

// Store is the subset of *db.DB the queue needs.
type Store interface {
	EnqueueOutreach(ctx context.Context, in *db.OutreachInput) (*db.OutreachItem, error)
	GetOutreach(ctx context.Context, id string) (*db.OutreachItem, error)
	ListPendingOutreach(ctx context.Context) ([]db.OutreachItem, error)
	MarkOutreachSent(ctx context.Context, id string) error
}

// Queue is the outreach FIFO
type Queue struct {
	store Store
}

// NewQueue creates a Queue
func NewQueue(store Store) *Queue {
	return &Queue{store: store}
}

// Enqueue adds a pending message and returns its id.
func (q *Queue) Enqueue(ctx context.Context, targetType, name, contact, message string) (string, error) {
	item, err := q.store.EnqueueOutreach(ctx, &db.OutreachInput{
		TargetType:        targetType,
		TargetName:        name,
		TargetLinkedInURL: contact,
		Message:           message,
	})
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

// ListPending returns pending items oldest first.
func (q *Queue) ListPending(ctx context.Context) ([]db.OutreachItem, error) {
	return q.store.ListPendingOutreach(ctx)
}

// MarkSent records that the message was sent. There is no way back.
func (q *Queue) MarkSent(ctx context.Context, id string) error {
	return q.store.MarkOutreachSent(ctx, id)
}

// Skip leaves the item pending for a later pass. It only checks that the
// item exists.
func (q *Queue) Skip(ctx context.Context, id string) error {
	item, err := q.store.GetOutreach(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("outreach %s: %w", id, db.ErrNotFound)
	}
	return nil
}

// QueueCandidateOutreach renders and enqueues a message to a candidate.
func (q *Queue) QueueCandidateOutreach(ctx context.Context, linkedInURL string, m CandidateMessage) (string, error) {
	msg, err := RenderCandidate(m)
	if err != nil {
		return "", err
	}
	id, err := q.Enqueue(ctx, db.TargetCandidate, m.CandidateName, linkedInURL, msg)
	if err != nil {
		return "", err
	}
	log.Printf("[outreach] queued message to candidate %s (%s)", m.CandidateName, id)
	return id, nil
}

// QueueHiringManagerOutreach renders and enqueues an introduction to a hiring manager.
func (q *Queue) QueueHiringManagerOutreach(ctx context.Context, linkedInURL string, m HiringManagerMessage) (string, error) {
	msg, err := RenderHiringManager(m)
	if err != nil {
		return "", err
	}
	id, err := q.Enqueue(ctx, db.TargetHiringManager, m.ManagerName, linkedInURL, msg)
	if err != nil {
		return "", err
	}
	log.Printf("[outreach] queued introduction to hiring manager %s (%s)", m.ManagerName, id)
	return id, nil
}

// Decision is a reviewer's answer for one item.
type Decision string

const (
	// DecisionSent marks the item sent
	DecisionSent Decision = "sent"
	// DecisionKeep leaves the item in the queue
	DecisionKeep Decision = "keep"
	// DecisionSkip leaves the item in the queue until the next pass
	DecisionSkip Decision = "skip"
)

// Reviewer asks a human what happened to one pending item.
type Reviewer interface {
	Review(ctx context.Context, item db.OutreachItem, index, total int) (Decision, error)
}

// ReviewSummary counts the outcomes of one review pass.
type ReviewSummary struct {
	Sent    int
	Kept    int
	Skipped int
}

// Review walks every pending item once. Only DecisionSent changes state.
func (q *Queue) Review(ctx context.Context, r Reviewer) (ReviewSummary, error) {
	var summary ReviewSummary

	pending, err := q.ListPending(ctx)
	if err != nil {
		return summary, err
	}

	for i, item := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		decision, err := r.Review(ctx, item, i+1, len(pending))
		if err != nil {
			return summary, fmt.Errorf("failed to review outreach %s: %w", item.ID, err)
		}
		switch decision {
		case DecisionSent:
			if err := q.MarkSent(ctx, item.ID); err != nil {
				return summary, err
			}
			summary.Sent++
		case DecisionSkip:
			if err := q.Skip(ctx, item.ID); err != nil {
				return summary, err
			}
			summary.Skipped++
		default:
			summary.Kept++
		}
	}
	return summary, nil
}
