package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/llm"
)

// ErrNoClient is returned when extraction is asked of a nil LLM client.
var ErrNoClient = errors.New("no LLM client configured")

// ExtractedJob is the model's reading of a job posting.
type ExtractedJob struct {
	Title        string   `json:"title"`
	Company      string   `json:"company,omitempty"`
	Location     string   `json:"location,omitempty"`
	Requirements []string `json:"requirements"`
	Summary      string   `json:"summary,omitempty"`
}

// ExtractedProfile is the model's reading of a candidate profile.
type ExtractedProfile struct {
	Name        string   `json:"name"`
	Email       string   `json:"email,omitempty"`
	LinkedInURL string   `json:"linkedin_url,omitempty"`
	Skills      []string `json:"skills"`
	Location    string   `json:"location,omitempty"`
	Industries  []string `json:"industries,omitempty"`
}

// ExtractJob asks the model for the structured fields of a job posting.
func ExtractJob(ctx context.Context, client llm.Client, text string) (*ExtractedJob, error) {
	var out ExtractedJob
	if err := extract(ctx, client, llm.JobSpecSchema(), text, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractProfile asks the model for the structured fields of a profile.
func ExtractProfile(ctx context.Context, client llm.Client, text string) (*ExtractedProfile, error) {
	var out ExtractedProfile
	if err := extract(ctx, client, llm.CandidateProfileSchema(), text, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func extract(ctx context.Context, client llm.Client, schema llm.ExtractionSchema, text string, out any) error {
	if client == nil {
		return ErrNoClient
	}
	prompt := llm.BuildExtractionPrompt(schema, text)
	resp, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return fmt.Errorf("failed to generate content: %w", err)
	}
	resp = llm.CleanJSONBlock(resp)
	if err := json.Unmarshal([]byte(resp), out); err != nil {
		return fmt.Errorf("failed to unmarshal %s JSON: %w (content: %s)", schema.Name, err, resp)
	}
	return nil
}
