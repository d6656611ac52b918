// Package oracle turns free-text model responses into bounded fit scores.
//
// A scoring prompt asks the model to put a line of the form "MARKER: <number>"
// somewhere in its answer. ParseScore finds the first such line, normalizes
// the number to [0,1] and keeps everything else as rationale. Anything that
// goes wrong (no marker, garbled number, failed call) yields the caller's
// documented default score instead of an error, so batch runs always finish.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/llm"
)

// Default scores
const (
	// ScreeningDefault is used where an unreadable answer must not advance a candidate.
	ScreeningDefault = 0.0
	// NeutralDefault is used where an unreadable answer means "unknown".
	NeutralDefault = 0.5
)

// Score markers
const (
	MarkerMatchScore = "MATCH_SCORE"
	MarkerScore      = "SCORE"
)

// ErrNoClient is recorded on results when no model client is configured.
var ErrNoClient = errors.New("no LLM client configured")

// Convention describes how a response encodes its score.
type Convention struct {
	Marker string
	// Scale is the top of the model's scale: 1 for 0.0-1.0 answers, 10 for 0-10.
	Scale float64
	// Default is returned when the score cannot be read.
	Default float64
	// Tier overrides the oracle's model tier for this call.
	Tier llm.ModelTier
}

// Screening is the 0-1 MATCH_SCORE convention with the screening default.
func Screening() Convention {
	return Convention{Marker: MarkerMatchScore, Scale: 1, Default: ScreeningDefault}
}

// Neutral is the 0-1 MATCH_SCORE convention with the neutral default.
func Neutral() Convention {
	return Convention{Marker: MarkerMatchScore, Scale: 1, Default: NeutralDefault}
}

// Result is the outcome of one scoring call.
type Result struct {
	// Score is always within [0,1].
	Score     float64
	Rationale string
	// Raw is the unmodified model response.
	Raw string
	// Parsed is false when Score is the convention default.
	Parsed bool
	// Err is set when the model call itself failed.
	Err error
}

// Oracle wraps an llm.Client with score parsing. The zero client is allowed;
// every call then returns the convention default.
type Oracle struct {
	client llm.Client
	tier   llm.ModelTier
	logger *log.Logger
}

// Option configures an Oracle
type Option func(*Oracle)

// WithTier sets the default model tier
func WithTier(tier llm.ModelTier) Option {
	return func(o *Oracle) { o.tier = tier }
}

// WithLogger routes transport failures to logger instead of the standard logger
func WithLogger(logger *log.Logger) Option {
	return func(o *Oracle) { o.logger = logger }
}

// New creates an Oracle
func New(client llm.Client, opts ...Option) *Oracle {
	o := &Oracle{
		client: client,
		tier:   llm.TierStandard,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Score sends prompt to the model and parses the reply with conv.
// It never returns an error; failures are reported on Result.Err.
func (o *Oracle) Score(ctx context.Context, prompt string, conv Convention) Result {
	text, err := o.call(ctx, prompt, conv.Tier)
	if err != nil {
		o.logger.Printf("[oracle] scoring call failed, using default %.2f: %v", clamp(conv.Default), err)
		return Result{
			Score:     clamp(conv.Default),
			Rationale: fmt.Sprintf("(no assessment: %v)", err),
			Err:       err,
		}
	}
	return ParseScore(text, conv)
}

// Generate returns free text from the model, or fallback on any failure.
func (o *Oracle) Generate(ctx context.Context, prompt, fallback string) string {
	text, err := o.call(ctx, prompt, "")
	if err != nil {
		o.logger.Printf("[oracle] generation failed, using fallback: %v", err)
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return text
}

// GenerateJSON returns a cleaned JSON reply, or "" on failure.
func (o *Oracle) GenerateJSON(ctx context.Context, prompt string) string {
	if o.client == nil {
		return ""
	}
	text, err := o.safeCall(ctx, func() (string, error) {
		return o.client.GenerateJSON(ctx, prompt, o.tier)
	})
	if err != nil {
		o.logger.Printf("[oracle] JSON generation failed: %v", err)
		return ""
	}
	return llm.CleanJSONBlock(text)
}

func (o *Oracle) call(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if o == nil || o.client == nil {
		return "", ErrNoClient
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if tier == "" {
		tier = o.tier
	}
	return o.safeCall(ctx, func() (string, error) {
		return o.client.GenerateContent(ctx, prompt, tier)
	})
}

// safeCall converts a panicking client into an error.
func (o *Oracle) safeCall(_ context.Context, fn func() (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("LLM client panic: %v", r)
		}
	}()
	return fn()
}

// numberRe matches a whole score token: a plain decimal, an optional
// "/denominator", closing brackets or emphasis, then the end of the token.
// "40%" and "7.3e-1" do not match.
var numberRe = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)(\s*/\s*(\d+(\.\d+)?))?[\]\)\*_]*[.,;]?(\s|$)`)

// ParseScore extracts the score from text using conv. The first line with
// conv.Marker followed by a colon is the score line; the rest of the text is
// rationale. A score line whose value does not parse yields conv.Default.
func ParseScore(text string, conv Convention) Result {
	fallback := Result{
		Score:     clamp(conv.Default),
		Rationale: strings.TrimSpace(text),
		Raw:       text,
	}
	if conv.Marker == "" {
		return fallback
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		after, ok := markerValue(line, conv.Marker)
		if !ok {
			continue
		}

		value, ok := parseValue(after, conv.Scale)
		if !ok {
			return fallback
		}

		rest := make([]string, 0, len(lines)-1)
		rest = append(rest, lines[:i]...)
		rest = append(rest, lines[i+1:]...)
		return Result{
			Score:     clamp(value),
			Rationale: strings.TrimSpace(strings.Join(rest, "\n")),
			Raw:       text,
			Parsed:    true,
		}
	}
	return fallback
}

// markerValue returns what follows "marker:" in line. Emphasis and spaces
// may sit between the marker and the colon, as in "**SCORE**:".
func markerValue(line, marker string) (string, bool) {
	for from := 0; from < len(line); {
		idx := strings.Index(line[from:], marker)
		if idx < 0 {
			return "", false
		}
		after := strings.TrimLeft(line[from+idx+len(marker):], "*_ \t")
		if strings.HasPrefix(after, ":") {
			return after[1:], true
		}
		from += idx + len(marker)
	}
	return "", false
}

// parseValue reads the number after a marker's colon, e.g. " 0.73", "** 7/10**", " [0.8]".
func parseValue(s string, scale float64) (float64, bool) {
	s = strings.TrimLeft(s, "*_[( \t")

	m := numberRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if s[0] == '-' {
		n = -n
	}

	denom := scale
	if m[4] != "" {
		d, err := strconv.ParseFloat(m[4], 64)
		if err == nil && d > 0 {
			denom = d
		}
	}
	if denom <= 0 {
		denom = 1
	}
	return n / denom, true
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
