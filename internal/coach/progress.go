package coach

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Psianturi/flexifit/internal/extract"
	"github.com/Psianturi/flexifit/internal/models"
	"github.com/Psianturi/flexifit/internal/textutil"
	"github.com/Psianturi/flexifit/internal/trace"
)

// habitPatterns are the lexical cues that an assistant message contained
// a micro-habit proposal.
var habitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bhow about\b`),
	regexp.MustCompile(`\blet'?s\b`),
	regexp.MustCompile(`\bcommit\b`),
	regexp.MustCompile(`\bjust\b`),
	regexp.MustCompile(`\b2\s*-?\s*minute\b`),
	regexp.MustCompile(`\b5\s*-?\s*minute\b`),
	regexp.MustCompile(`\bmicro\s*-?\s*habit\b`),
	regexp.MustCompile(`\btiny\b`),
}

// HeuristicMicroHabits counts assistant messages matching at least one
// habit pattern. Deterministic, no model call.
func HeuristicMicroHabits(history []models.ChatMessage) int {
	count := 0
	for _, msg := range history {
		role, ok := models.ParseRole(msg.Role)
		if !ok || role != models.RoleAssistant {
			continue
		}
		text := strings.ToLower(msg.Text)
		for _, p := range habitPatterns {
			if p.MatchString(text) {
				count++
				break
			}
		}
	}
	return count
}

// CompletionRate maps the chat count onto [0,100], saturating at 10 chats.
func CompletionRate(totalChats int) float64 {
	if totalChats > 10 {
		totalChats = 10
	}
	if totalChats < 0 {
		totalChats = 0
	}
	return float64(totalChats) / 10.0 * 100.0
}

const analysisTimeout = 10 * time.Second

// ProgressInsights asks the model for a bullet summary plus its own
// micro-habit count. When the caller requested English but the output
// trips the language detector, exactly one corrective re-prompt is
// issued; a correction is accepted only if it parses and no longer trips.
// Insights that end up empty or still foreign become the fixed fallback.
func (s *Service) ProgressInsights(ctx context.Context, goal string, history []models.ChatMessage, language string) (string, int, error) {
	chatLog := transcript(history, analysisWindow)
	wantEnglish := textutil.NormalizeLanguage(language) == "en"

	prompt := fmt.Sprintf(progressPrompt, textutil.LanguageLabel(language), goal, chatLog)
	insights, aiCount, err := s.progressCall(ctx, prompt)
	if err != nil {
		return "", 0, err
	}

	if wantEnglish && insights != "" && s.opts.Detector.Match(insights) {
		retryInsights, retryCount, err := s.progressCall(ctx,
			fmt.Sprintf(progressEnglishPrompt, goal, chatLog))
		if err == nil && retryInsights != "" && !s.opts.Detector.Match(retryInsights) {
			insights, aiCount = retryInsights, retryCount
		} else if err != nil {
			s.logger.Warn("english corrective re-prompt failed", "error", err)
		}
	}

	if insights == "" || (wantEnglish && s.opts.Detector.Match(insights)) {
		insights = FallbackInsights
	}

	trace.Emit(s.tracer, "progress_insights", "ai_count", aiCount)
	return insights, aiCount, nil
}

func (s *Service) progressCall(ctx context.Context, prompt string) (string, int, error) {
	raw, err := s.llm.Complete(ctx, prompt, analysisTimeout)
	if err != nil {
		return "", 0, err
	}
	obj, err := extract.JSONObject(raw)
	if err != nil {
		return "", 0, err
	}
	insights := strings.TrimSpace(textutil.CoerceBullets(obj["insights"]))
	count := 0
	if n, ok := obj["micro_habits_offered"].(float64); ok {
		count = int(n)
	}
	return insights, count, nil
}

// WeeklyMotivation produces one short sentence from the 7-day record,
// with the same one-shot English-corrective rewrite. The caller supplies
// the fixed fallback when this fails outright.
func (s *Service) WeeklyMotivation(ctx context.Context, goal string, completionRate float64, days []DayCompletion, language string) (string, error) {
	daysCompact, doneDays, totalDays := compactDays(days)

	prompt := fmt.Sprintf(motivationPrompt,
		textutil.LanguageLabel(language), goal, completionRate,
		daysCompact, doneDays, totalDays)
	raw, err := s.llm.Complete(ctx, prompt, analysisTimeout)
	if err != nil {
		return "", err
	}
	text := squeezeSentence(raw)

	wantEnglish := textutil.NormalizeLanguage(language) == "en"
	if wantEnglish && s.opts.Detector.Match(text) {
		rewritten, err := s.llm.Complete(ctx, fmt.Sprintf(englishRewritePrompt, text), analysisTimeout)
		if err == nil {
			rewritten = squeezeSentence(rewritten)
			if rewritten != "" && !s.opts.Detector.Match(rewritten) {
				text = rewritten
			}
		} else {
			s.logger.Warn("english rewrite failed", "error", err)
		}
	}

	if text == "" || (wantEnglish && s.opts.Detector.Match(text)) {
		return FallbackMotivation, nil
	}

	trace.Emit(s.tracer, "weekly_motivation", "done_days", doneDays)
	return text, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// squeezeSentence collapses internal whitespace and strips wrapping quotes.
func squeezeSentence(s string) string {
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// ProgressSummary is the response body of the progress endpoint.
type ProgressSummary struct {
	Goal               string  `json:"goal"`
	TotalChats         int     `json:"total_chats"`
	MicroHabitsOffered int     `json:"micro_habits_offered"`
	CompletionRate     float64 `json:"completion_rate"`
	LastInteraction    string  `json:"last_interaction"`
	Insights           string  `json:"insights"`
}

// Progress blends the deterministic heuristic with the AI estimate:
// micro_habits_offered is the max of both, and an AI failure degrades to
// the heuristic count with fallback insights.
func (s *Service) Progress(ctx context.Context, goal string, history []models.ChatMessage, language string) ProgressSummary {
	heuristic := HeuristicMicroHabits(history)

	insights, aiCount, err := s.ProgressInsights(ctx, goal, history, language)
	if err != nil {
		s.logger.Warn("progress insights fallback", "error", err)
		insights, aiCount = FallbackInsights, 0
	}

	offered := heuristic
	if aiCount > offered {
		offered = aiCount
	}

	return ProgressSummary{
		Goal:               goal,
		TotalChats:         len(history),
		MicroHabitsOffered: offered,
		CompletionRate:     CompletionRate(len(history)),
		LastInteraction:    "recent",
		Insights:           insights,
	}
}
