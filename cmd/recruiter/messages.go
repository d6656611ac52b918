package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/bus"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/report"
)

var messagesCmd = &cobra.Command{
	Use:     "messages",
	Aliases: []string{"msg"},
	Short:   "Send and read agent messages",
}

var messagesSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message from one agent to another",
	Args:  cobra.NoArgs,
	RunE:  runMessagesSend,
}

var messagesInboxCmd = &cobra.Command{
	Use:   "inbox <agent>",
	Short: "List an agent's messages, newest first",
	Long:  "List unread messages addressed to an agent. Listing does not mark anything read; use --mark-read or 'messages read'.",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagesInbox,
}

var messagesReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Show one message and mark it read",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagesRead,
}

var messagesLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the full conversation between agents",
	Long:  "Print every message on the bus as a markdown log, oldest first. Nothing is marked read.",
	Args:  cobra.NoArgs,
	RunE:  runMessagesLog,
}

var (
	msgFrom     string
	msgTo       string
	msgType     string
	msgContent  string
	msgMetadata string

	inboxAll      bool
	inboxType     string
	inboxLimit    int
	inboxMarkRead bool
)

func init() {
	messagesSendCmd.Flags().StringVar(&msgFrom, "from", "", "Sending agent (Jack, Jill, Scout)")
	messagesSendCmd.Flags().StringVar(&msgTo, "to", "", "Receiving agent (Jack, Jill, Scout)")
	messagesSendCmd.Flags().StringVarP(&msgType, "type", "t", "", "Message type, e.g. job_spec")
	messagesSendCmd.Flags().StringVarP(&msgContent, "content", "c", "", "Message body")
	messagesSendCmd.Flags().StringVarP(&msgMetadata, "metadata", "m", "", "Metadata as a JSON object")
	for _, f := range []string{"from", "to", "type", "content"} {
		_ = messagesSendCmd.MarkFlagRequired(f)
	}

	messagesInboxCmd.Flags().BoolVarP(&inboxAll, "all", "a", false, "Include messages already read")
	messagesInboxCmd.Flags().StringVarP(&inboxType, "type", "t", "", "Only messages of this type")
	messagesInboxCmd.Flags().IntVarP(&inboxLimit, "limit", "n", 0, "Show at most n messages")
	messagesInboxCmd.Flags().BoolVar(&inboxMarkRead, "mark-read", false, "Mark the listed messages read")

	messagesCmd.AddCommand(messagesSendCmd, messagesInboxCmd, messagesReadCmd, messagesLogCmd)
	rootCmd.AddCommand(messagesCmd)
}

// canonicalAgent accepts agent names in any case.
func canonicalAgent(name string) (string, error) {
	for _, a := range bus.Agents {
		if strings.EqualFold(a, name) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown agent %q (expected one of %s)", name, strings.Join(bus.Agents, ", "))
}

func runMessagesSend(cmd *cobra.Command, _ []string) error {
	from, err := canonicalAgent(msgFrom)
	if err != nil {
		return err
	}
	to, err := canonicalAgent(msgTo)
	if err != nil {
		return err
	}
	var meta map[string]any
	if msgMetadata != "" {
		if err := json.Unmarshal([]byte(msgMetadata), &meta); err != nil {
			return fmt.Errorf("--metadata must be a JSON object: %w", err)
		}
	}

	return withStore(cmd.Context(), func(_ *db.DB, b *bus.Bus) error {
		id, err := b.Send(cmd.Context(), from, to, msgType, msgContent, meta)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %s from %s to %s (id %s)\n", msgType, from, to, id)
		return nil
	})
}

func runMessagesInbox(cmd *cobra.Command, args []string) error {
	agent, err := canonicalAgent(args[0])
	if err != nil {
		return err
	}
	return withStore(cmd.Context(), func(_ *db.DB, b *bus.Bus) error {
		msgs, err := b.Receive(cmd.Context(), agent, bus.ReceiveOptions{
			IncludeRead: inboxAll,
			Type:        inboxType,
			Limit:       inboxLimit,
		})
		if err != nil {
			return err
		}
		report.NewPrinter(cmd.OutOrStdout()).PrintInbox(agent, msgs)
		if !inboxMarkRead {
			return nil
		}
		for _, m := range msgs {
			if err := b.MarkRead(cmd.Context(), m.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func runMessagesRead(cmd *cobra.Command, args []string) error {
	return withStore(cmd.Context(), func(_ *db.DB, b *bus.Bus) error {
		msg, err := b.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if msg == nil {
			return fmt.Errorf("message %s: %w", args[0], db.ErrNotFound)
		}
		printMessage(cmd.OutOrStdout(), msg)
		return b.MarkRead(cmd.Context(), msg.ID)
	})
}

func runMessagesLog(cmd *cobra.Command, _ []string) error {
	return withStore(cmd.Context(), func(_ *db.DB, b *bus.Bus) error {
		msgs, err := b.All(cmd.Context())
		if err != nil {
			return err
		}
		report.NewPrinter(cmd.OutOrStdout()).PrintConversation(msgs)
		return nil
	})
}

func printMessage(w io.Writer, m *db.AgentMessage) {
	fmt.Fprintf(w, "From: %s\n", m.FromAgent)
	fmt.Fprintf(w, "To:   %s\n", m.ToAgent)
	fmt.Fprintf(w, "Type: %s\n", m.Type)
	fmt.Fprintf(w, "Time: %s\n", m.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "\n%s\n", m.Content)
	if len(m.Metadata) == 0 {
		return
	}
	keys := make([]string, 0, len(m.Metadata))
	for k := range m.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(w, "\nAttachments:")
	for _, k := range keys {
		fmt.Fprintf(w, "  - %s: %v\n", k, m.Metadata[k])
	}
}
