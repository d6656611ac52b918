package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const messageColumns = `seq, id, from_agent, to_agent, message_type, content, metadata, read, created_at`

// InsertMessage appends a new unread message and returns it
func (d *DB) InsertMessage(ctx context.Context, in *MessageInput) (*AgentMessage, error) {
	if err := validateInput("message", in); err != nil {
		return nil, err
	}
	meta := in.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := encodeJSON(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	id, err := d.insertWithID(ctx,
		`INSERT INTO agent_messages (id, from_agent, to_agent, message_type, content, metadata, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.FromAgent, in.ToAgent, in.Type, in.Content, metaJSON, false, d.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return d.GetMessage(ctx, id)
}

// GetMessage retrieves a message by id. Returns nil, nil if not found.
func (d *DB) GetMessage(ctx context.Context, id string) (*AgentMessage, error) {
	var row messageRow
	err := d.db.GetContext(ctx, &row, d.q(`SELECT `+messageColumns+` FROM agent_messages WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	m, err := row.toMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", id, err)
	}
	return m, nil
}

// ListMessages returns messages matching filter
func (d *DB) ListMessages(ctx context.Context, filter MessageFilter) ([]AgentMessage, error) {
	var (
		where []string
		args  []any
	)
	if filter.ToAgent != "" {
		where = append(where, "to_agent = ?")
		args = append(args, filter.ToAgent)
	}
	if filter.Type != "" {
		where = append(where, "message_type = ?")
		args = append(args, filter.Type)
	}
	if filter.UnreadOnly {
		where = append(where, "read = ?")
		args = append(args, false)
	}

	query := `SELECT ` + messageColumns + ` FROM agent_messages`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.NewestFirst {
		query += " ORDER BY created_at DESC, seq DESC"
	} else {
		query += " ORDER BY created_at ASC, seq ASC"
	}
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows []messageRow
	if err := d.db.SelectContext(ctx, &rows, d.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	out := make([]AgentMessage, 0, len(rows))
	for _, r := range rows {
		m, err := r.toMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to decode message %s: %w", r.ID, err)
		}
		out = append(out, *m)
	}
	return out, nil
}

// CountUnread returns the number of unread messages addressed to agent
func (d *DB) CountUnread(ctx context.Context, agent string) (int, error) {
	var n int
	err := d.db.GetContext(ctx, &n, d.q(`SELECT COUNT(*) FROM agent_messages WHERE to_agent = ? AND read = ?`), agent, false)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return n, nil
}

// MarkMessageRead flips read to true. Already-read messages are left as is;
// unknown ids return ErrNotFound.
func (d *DB) MarkMessageRead(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, d.q(`UPDATE agent_messages SET read = ? WHERE id = ? AND read = ?`), true, id, false)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if n > 0 {
		return nil
	}
	m, err := d.GetMessage(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	return nil
}
