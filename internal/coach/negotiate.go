package coach

import (
	"context"
	"fmt"
	"time"

	"github.com/Psianturi/flexifit/internal/extract"
	"github.com/Psianturi/flexifit/internal/models"
	"github.com/Psianturi/flexifit/internal/trace"
)

// NegotiationRequest carries one user turn plus its context. UserMessage
// and Goal are validated non-blank by the HTTP layer before this runs.
type NegotiationRequest struct {
	UserMessage string
	Goal        string
	History     []models.ChatMessage
	Language    string
}

// NegotiationResult is the outcome of one negotiate-judge-retry pass.
// When RetryUsed is set, EmpathyScore reflects the second judge call and
// InitialEmpathyScore the first.
type NegotiationResult struct {
	Reply               string
	DealMade            bool
	DealLabel           string
	EmpathyScore        *int
	InitialEmpathyScore *int
	EmpathyRationale    string
	RetryUsed           bool
}

const negotiateTimeout = 20 * time.Second

// Negotiate runs the retry state machine: draft, judge, and at most one
// corrective retry followed by a rejudge. Only the drafting call is fatal;
// every evaluation failure degrades to returning the draft unscored.
func (s *Service) Negotiate(ctx context.Context, req NegotiationRequest) (*NegotiationResult, error) {
	history := transcriptOrEmpty(req.History, negotiationWindow)

	prompt := fmt.Sprintf(negotiationPrompt, req.Goal, history, req.UserMessage)
	raw, err := s.llm.Complete(ctx, prompt, negotiateTimeout)
	if err != nil {
		return nil, err
	}

	reply, label, dealMade := extract.Deal(raw)
	res := &NegotiationResult{
		Reply:     reply,
		DealMade:  dealMade,
		DealLabel: label,
	}

	judged, err := s.Judge(ctx, req.UserMessage, reply)
	if err != nil {
		// Evaluation failure must never fail the user-visible request.
		s.logger.Warn("empathy eval skipped", "error", err)
		return res, nil
	}

	initial := judged.Score
	res.EmpathyScore = &initial
	res.InitialEmpathyScore = &initial
	res.EmpathyRationale = judged.Rationale

	if !s.opts.RetryEnabled || judged.Score >= s.opts.RetryThreshold {
		trace.Emit(s.tracer, "negotiation", "retry_used", false, "empathy", judged.Score)
		return res, nil
	}

	retryRaw, err := s.llm.Complete(ctx, fmt.Sprintf(retryPrompt,
		req.Goal, history, req.UserMessage,
		reply, judged.Score, judged.Rationale,
	), negotiateTimeout)
	if err != nil {
		s.logger.Warn("low-empathy retry skipped", "error", err)
		return res, nil
	}

	retryReply, retryLabel, retryDeal := extract.Deal(retryRaw)

	rejudged, err := s.Judge(ctx, req.UserMessage, retryReply)
	if err != nil {
		// Without a fresh score the rewrite is unverified; keep the draft.
		s.logger.Warn("retry rejudge skipped", "error", err)
		return res, nil
	}

	final := rejudged.Score
	res.Reply = retryReply
	res.EmpathyScore = &final
	res.EmpathyRationale = rejudged.Rationale
	res.RetryUsed = true
	if retryDeal {
		res.DealMade = true
		res.DealLabel = retryLabel
	}

	trace.Emit(s.tracer, "negotiation", "retry_used", true,
		"initial_empathy", initial, "empathy", final)
	return res, nil
}
