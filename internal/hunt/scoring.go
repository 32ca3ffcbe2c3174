package hunt

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// DefaultAIComment is shown whenever the judge produced no usable commentary.
const DefaultAIComment = "The judges are confused. Please try again."

const (
	maxAccuracy    = 50
	maxComposition = 25
	maxVibe        = 25
	maxTotalScore  = 100

	// Without an explicit approval flag, a submission passes when the judge
	// granted at least half the accuracy points.
	approvalAccuracyFloor = 25
)

var ErrInvalidJudgeResponse = errors.New("invalid judge response structure")

// ScoreBreakdown is a fresh value per normalization; never share or reuse one
// across submissions.
type ScoreBreakdown struct {
	Accuracy    int `json:"accuracy"`
	Composition int `json:"composition"`
	Vibe        int `json:"vibe"`
}

type ScoreResult struct {
	TotalScore int            `json:"total_score"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	IsApproved bool           `json:"is_approved"`
	AIComment  string         `json:"ai_comment"`
}

type rawBreakdown struct {
	Accuracy    *float64 `json:"accuracy"`
	Composition *float64 `json:"composition"`
	Vibe        *float64 `json:"vibe"`
}

type rawJudgeResponse struct {
	Score      *float64      `json:"score"`
	Breakdown  *rawBreakdown `json:"breakdown"`
	IsApproved *bool         `json:"is_approved"`
	Comment    any           `json:"comment"`
}

func clampScore(v float64, max int) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > max {
		return max
	}
	return rounded
}

// NormalizeJudgeResponse sanitizes a raw judge payload into a canonical
// ScoreResult. The judge is untrusted input: every numeric field is clamped,
// approval is derived when absent, and a zero accuracy vetoes the whole
// submission no matter what else the payload claims.
func NormalizeJudgeResponse(raw []byte) (ScoreResult, error) {
	var parsed rawJudgeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return ScoreResult{}, ErrInvalidJudgeResponse
	}

	if parsed.Score == nil || parsed.Breakdown == nil ||
		parsed.Breakdown.Accuracy == nil ||
		parsed.Breakdown.Composition == nil ||
		parsed.Breakdown.Vibe == nil {
		return ScoreResult{}, ErrInvalidJudgeResponse
	}

	breakdown := ScoreBreakdown{
		Accuracy:    clampScore(*parsed.Breakdown.Accuracy, maxAccuracy),
		Composition: clampScore(*parsed.Breakdown.Composition, maxComposition),
		Vibe:        clampScore(*parsed.Breakdown.Vibe, maxVibe),
	}

	total := clampScore(*parsed.Score, maxTotalScore)

	approved := breakdown.Accuracy >= approvalAccuracyFloor
	if parsed.IsApproved != nil {
		approved = *parsed.IsApproved
	}

	// Veto rule: no accuracy means automatic rejection, overriding both the
	// reported total and any explicit approval flag.
	if breakdown.Accuracy == 0 {
		total = 0
		approved = false
	}

	comment := DefaultAIComment
	if s, ok := parsed.Comment.(string); ok {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			comment = trimmed
		}
	}

	return ScoreResult{
		TotalScore: total,
		Breakdown:  breakdown,
		IsApproved: approved,
		AIComment:  comment,
	}, nil
}

// SafeFailureResult is the recorded outcome when judging fails outright:
// zeroed scores, rejected, canned comment. Scoring failures must never crash
// the submission flow or leave a half-written row.
func SafeFailureResult() ScoreResult {
	return ScoreResult{
		TotalScore: 0,
		Breakdown:  ScoreBreakdown{},
		IsApproved: false,
		AIComment:  DefaultAIComment,
	}
}
