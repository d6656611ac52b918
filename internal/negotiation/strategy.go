package negotiation

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/oracle"
)

// Rounds names the round structure of a strategy.
type Rounds string

const (
	// RoundsCrossReview screens everyone, shortlists, then runs an advocate
	// pitch followed by an independent review.
	RoundsCrossReview Rounds = "cross_review"
	// RoundsPitch opens with a role statement and lets the advocate pitch
	// or skip each candidate before one independent review.
	RoundsPitch Rounds = "pitch"
)

// Built-in strategy names
const (
	StrategyShortlist = "shortlist"
	StrategyBoardroom = "boardroom"
)

// Strategy holds every threshold and round choice of a negotiation run.
// Thresholds are on the normalized [0,1] scale whatever Scale the model
// answers on.
type Strategy struct {
	Name   string `yaml:"-"`
	Base   string `yaml:"base,omitempty"`
	Rounds Rounds `yaml:"rounds"`

	ScreenThreshold float64 `yaml:"screen_threshold"`
	ShortlistCap    int     `yaml:"shortlist_cap"`

	InterviewThreshold float64 `yaml:"interview_threshold"`
	BackupThreshold    float64 `yaml:"backup_threshold"`

	AdmitThreshold float64 `yaml:"admit_threshold"`
	AdmitExclusive bool    `yaml:"admit_exclusive"`

	// Scale is the top of the scale the prompts ask the model to use.
	Scale           float64 `yaml:"scale"`
	AdvocateMarker  string  `yaml:"advocate_marker"`
	ReviewerMarker  string  `yaml:"reviewer_marker"`
	AdvocateDefault float64 `yaml:"advocate_default"`
	ReviewerDefault float64 `yaml:"reviewer_default"`

	ExternalFallback bool   `yaml:"external_fallback"`
	ExternalLimit    int    `yaml:"external_limit"`
	ExternalLocation string `yaml:"external_location"`
}

// ShortlistStrategy is the two-round cross-review protocol.
func ShortlistStrategy() Strategy {
	return Strategy{
		Name:               StrategyShortlist,
		Rounds:             RoundsCrossReview,
		ScreenThreshold:    0.5,
		ShortlistCap:       5,
		InterviewThreshold: 0.7,
		BackupThreshold:    0.5,
		Scale:              1,
		AdvocateMarker:     oracle.MarkerMatchScore,
		ReviewerMarker:     oracle.MarkerMatchScore,
		AdvocateDefault:    oracle.ScreeningDefault,
		ReviewerDefault:    oracle.ScreeningDefault,
	}
}

// BoardroomStrategy is the one-round pitch protocol with a strict admission bar and
// external sourcing when nobody is admitted.
func BoardroomStrategy() Strategy {
	return Strategy{
		Name:             StrategyBoardroom,
		Rounds:           RoundsPitch,
		AdmitThreshold:   0.8,
		AdmitExclusive:   true,
		Scale:            10,
		AdvocateMarker:   oracle.MarkerScore,
		ReviewerMarker:   oracle.MarkerScore,
		AdvocateDefault:  oracle.NeutralDefault,
		ReviewerDefault:  oracle.ScreeningDefault,
		ExternalFallback: true,
		ExternalLimit:    3,
	}
}

func builtins() map[string]Strategy {
	return map[string]Strategy{
		StrategyShortlist: ShortlistStrategy(),
		StrategyBoardroom: BoardroomStrategy(),
	}
}

// Validate checks that thresholds and round settings are usable.
func (s Strategy) Validate() error {
	inUnit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("strategy %s: %s must be within [0,1], got %v", s.Name, name, v)
		}
		return nil
	}
	if s.Scale <= 0 {
		return fmt.Errorf("strategy %s: scale must be positive", s.Name)
	}
	if s.AdvocateMarker == "" || s.ReviewerMarker == "" {
		return fmt.Errorf("strategy %s: score markers are required", s.Name)
	}
	for name, v := range map[string]float64{
		"advocate_default": s.AdvocateDefault,
		"reviewer_default": s.ReviewerDefault,
	} {
		if err := inUnit(name, v); err != nil {
			return err
		}
	}

	switch s.Rounds {
	case RoundsCrossReview:
		for name, v := range map[string]float64{
			"screen_threshold":    s.ScreenThreshold,
			"interview_threshold": s.InterviewThreshold,
			"backup_threshold":    s.BackupThreshold,
		} {
			if err := inUnit(name, v); err != nil {
				return err
			}
		}
		if s.ShortlistCap <= 0 {
			return fmt.Errorf("strategy %s: shortlist_cap must be positive", s.Name)
		}
		if s.BackupThreshold > s.InterviewThreshold {
			return fmt.Errorf("strategy %s: backup_threshold above interview_threshold", s.Name)
		}
	case RoundsPitch:
		if err := inUnit("admit_threshold", s.AdmitThreshold); err != nil {
			return err
		}
	default:
		return fmt.Errorf("strategy %s: unknown rounds %q", s.Name, s.Rounds)
	}
	return nil
}

// Strategies is a set of named strategies.
type Strategies map[string]Strategy

// DefaultStrategies returns the built-in strategies.
func DefaultStrategies() Strategies {
	return Strategies(builtins())
}

// Names returns the strategy names sorted.
func (ss Strategies) Names() []string {
	names := make([]string, 0, len(ss))
	for name := range ss {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named strategy.
func (ss Strategies) Lookup(name string) (Strategy, error) {
	s, ok := ss[name]
	if !ok {
		return Strategy{}, fmt.Errorf("unknown strategy %q (available: %v)", name, ss.Names())
	}
	return s, nil
}

// ParseStrategies decodes a YAML document mapping names to strategies.
// An entry named after a built-in overrides only the fields it sets. A new
// name starts from the strategy given by its base key, or from shortlist.
func ParseStrategies(data []byte) (Strategies, error) {
	out := DefaultStrategies()
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	var nodes map[string]yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("failed to decode strategies: %w", err)
	}

	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := nodes[name]
		var head struct {
			Base string `yaml:"base"`
		}
		if err := node.Decode(&head); err != nil {
			return nil, fmt.Errorf("strategy %s: %w", name, err)
		}

		s, ok := out[name]
		if !ok || head.Base != "" {
			base := head.Base
			if base == "" {
				base = StrategyShortlist
			}
			b, known := builtins()[base]
			if !known {
				return nil, fmt.Errorf("strategy %s: unknown base %q", name, base)
			}
			s = b
		}
		if err := node.Decode(&s); err != nil {
			return nil, fmt.Errorf("strategy %s: %w", name, err)
		}
		s.Name = name
		if err := s.Validate(); err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}

// LoadStrategies reads strategies from a YAML file. An empty path returns
// the built-ins.
func LoadStrategies(path string) (Strategies, error) {
	if path == "" {
		return DefaultStrategies(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strategies %s: %w", path, err)
	}
	ss, err := ParseStrategies(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ss, nil
}
