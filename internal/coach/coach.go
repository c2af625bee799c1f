// Package coach holds the decision logic of the service: the
// negotiate-judge-retry loop, the empathy judge, and the progress,
// motivation and persona generators. All model I/O goes through the
// gateway.Completer interface so the whole package is testable with a
// fake.
package coach

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Psianturi/flexifit/internal/gateway"
	"github.com/Psianturi/flexifit/internal/models"
	"github.com/Psianturi/flexifit/internal/textutil"
	"github.com/Psianturi/flexifit/internal/trace"
)

// Options configure the retry policy explicitly so it is testable without
// environment mutation.
type Options struct {
	RetryEnabled   bool
	RetryThreshold int
	PromptVersion  string
	Detector       textutil.Detector
}

type Service struct {
	llm    gateway.Completer
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

func NewService(llm gateway.Completer, opts Options, logger *slog.Logger, tracer trace.Tracer) *Service {
	if opts.RetryThreshold < 1 {
		opts.RetryThreshold = 1
	}
	if opts.RetryThreshold > 5 {
		opts.RetryThreshold = 5
	}
	if opts.PromptVersion == "" {
		opts.PromptVersion = "v1"
	}
	if opts.Detector == nil {
		opts.Detector = textutil.IndonesianDetector{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = trace.Nop{}
	}
	return &Service{llm: llm, opts: opts, logger: logger, tracer: tracer}
}

// PromptVersion is surfaced in chat responses and health checks.
func (s *Service) PromptVersion() string {
	return s.opts.PromptVersion
}

const (
	negotiationWindow = 12
	analysisWindow    = 20
)

// transcript renders the most recent history turns as speaker-labelled
// lines. Blank messages and unrecognized roles are dropped.
func transcript(history []models.ChatMessage, window int) string {
	if len(history) > window {
		history = history[len(history)-window:]
	}
	var lines []string
	for _, msg := range history {
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}
		role, ok := models.ParseRole(msg.Role)
		if !ok {
			continue
		}
		speaker := "USER"
		if role == models.RoleAssistant {
			speaker = "FLEXIFIT"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, text))
	}
	return strings.Join(lines, "\n")
}

func transcriptOrEmpty(history []models.ChatMessage, window int) string {
	if t := transcript(history, window); t != "" {
		return t
	}
	return "(empty)"
}

// DayCompletion is one entry of a done/missed weekly sequence.
type DayCompletion struct {
	Date string `json:"date"`
	Done bool   `json:"done"`
}

func compactDays(days []DayCompletion) (compact string, done, total int) {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		status := "miss"
		if d.Done {
			status = "done"
			done++
		}
		parts = append(parts, fmt.Sprintf("%s:%s", d.Date, status))
	}
	total = len(days)
	if total == 0 {
		total = 1
	}
	return strings.Join(parts, ", "), done, total
}
