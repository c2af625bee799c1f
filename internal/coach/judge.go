package coach

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Psianturi/flexifit/internal/extract"
	"github.com/Psianturi/flexifit/internal/trace"
)

// ErrInvalidJudgment reports judge output whose empathy field was missing
// or neither numeric nor boolean.
var ErrInvalidJudgment = errors.New("invalid empathy judgment")

// Judgment is one LLM-as-judge evaluation of a reply. Produced fresh per
// turn, never reused.
type Judgment struct {
	Score     int
	Rationale string
}

const judgeTimeout = 10 * time.Second

// Judge scores an AI reply against the empathy rubric on a 1-5 scale.
func (s *Service) Judge(ctx context.Context, userText, aiText string) (Judgment, error) {
	prompt := fmt.Sprintf(judgePrompt, userText, aiText)
	raw, err := s.llm.Complete(ctx, prompt, judgeTimeout)
	if err != nil {
		return Judgment{}, fmt.Errorf("judge completion: %w", err)
	}

	obj, err := extract.JSONObject(raw)
	if err != nil {
		return Judgment{}, fmt.Errorf("judge output: %w", err)
	}

	score, err := coerceScore(obj["empathy"])
	if err != nil {
		return Judgment{}, err
	}

	rationale := ""
	if r, ok := obj["rationale"].(string); ok {
		rationale = strings.TrimSpace(r)
	}

	trace.Emit(s.tracer, "empathy_judge", "score", score)
	return Judgment{Score: score, Rationale: rationale}, nil
}

// coerceScore accepts booleans (true=5, false=1) and any numeric value,
// which is rounded and clamped into [1,5]. Anything else is invalid.
func coerceScore(v any) (int, error) {
	switch n := v.(type) {
	case bool:
		if n {
			return 5, nil
		}
		return 1, nil
	case float64:
		return clampScore(int(math.Round(n))), nil
	case int:
		return clampScore(n), nil
	default:
		return 0, ErrInvalidJudgment
	}
}

func clampScore(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}
