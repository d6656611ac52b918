package negotiation

import (
	"math"
	"sort"
)

// Decision is the outcome for one candidate.
type Decision string

const (
	DecisionInterview  Decision = "interview"
	DecisionBackup     Decision = "backup"
	DecisionPass       Decision = "pass"
	DecisionAdmit      Decision = "admit"
	DecisionReject     Decision = "reject"
	DecisionNotPitched Decision = "not_pitched"
)

// Screened is one candidate's screening result.
type Screened struct {
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"candidate_name,omitempty"`
	Score         float64 `json:"score"`
	Rationale     string  `json:"rationale,omitempty"`
	Parsed        bool    `json:"parsed"`
}

// Shortlist returns the screened candidates scoring at least threshold,
// highest first, at most limit of them. Equal scores keep their input order.
func Shortlist(screened []Screened, threshold float64, limit int) []Screened {
	sorted := make([]Screened, len(screened))
	copy(sorted, screened)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var out []Screened
	for _, s := range sorted {
		if s.Score < threshold {
			break
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s)
	}
	return out
}

// Average is the mean of two scores rounded to four decimals.
func Average(a, b float64) float64 {
	return round4((a + b) / 2)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Decide maps an averaged score to a decision under s. Cross-review bands
// include their lower bound. Pitch admission is exclusive unless the
// strategy says otherwise.
func Decide(avg float64, s Strategy) Decision {
	avg = round4(avg)
	switch s.Rounds {
	case RoundsPitch:
		admit := round4(s.AdmitThreshold)
		if avg > admit || (!s.AdmitExclusive && avg == admit) {
			return DecisionAdmit
		}
		return DecisionReject
	default:
		switch {
		case avg >= round4(s.InterviewThreshold):
			return DecisionInterview
		case avg >= round4(s.BackupThreshold):
			return DecisionBackup
		default:
			return DecisionPass
		}
	}
}
