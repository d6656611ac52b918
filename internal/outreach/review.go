package outreach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
)

var (
	colorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	colorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	messageStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)
)

// FormatItem renders one pending item for the terminal.
func FormatItem(item db.OutreachItem, index, total int) string {
	header := headerStyle.Render(fmt.Sprintf("[%d/%d] %s", index, total, item.TargetName))
	target := labelStyle.Render("Target: ") + item.TargetType
	link := labelStyle.Render("LinkedIn: ") + item.TargetLinkedInURL
	if item.TargetLinkedInURL == "" {
		link = labelStyle.Render("LinkedIn: ") + "N/A"
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, target, link, messageStyle.Render(item.Message))
}

// HuhReviewer asks on the terminal whether each item was sent.
type HuhReviewer struct {
	Out io.Writer
}

// NewHuhReviewer creates a terminal reviewer writing to stdout.
func NewHuhReviewer() *HuhReviewer {
	return &HuhReviewer{Out: os.Stdout}
}

// Review implements Reviewer. Aborting the prompt keeps the item.
func (h *HuhReviewer) Review(ctx context.Context, item db.OutreachItem, index, total int) (Decision, error) {
	fmt.Fprintln(h.Out, FormatItem(item, index, total))

	choice := string(DecisionKeep)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Did you send this message?").
				Options(
					huh.NewOption("Yes, mark as sent", string(DecisionSent)),
					huh.NewOption("No, keep it in the queue", string(DecisionKeep)),
					huh.NewOption("Skip, show it again next time", string(DecisionSkip)),
				).
				Value(&choice),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return DecisionKeep, nil
		}
		return "", err
	}
	return Decision(choice), nil
}
