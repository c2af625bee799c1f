package coach

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Psianturi/flexifit/internal/extract"
	"github.com/Psianturi/flexifit/internal/models"
	"github.com/Psianturi/flexifit/internal/textutil"
	"github.com/Psianturi/flexifit/internal/trace"
)

// PersonaRequest carries the behavioral stats the persona is derived
// from. CompletionRate7d and Streak arrive pre-clamped by the HTTP layer.
type PersonaRequest struct {
	Goal             string
	CompletionRate7d float64
	Streak           int
	Last7Days        []DayCompletion
	History          []models.ChatMessage
	Language         string
}

// Persona is a gamified archetype generated from behavioral stats.
type Persona struct {
	ArchetypeTitle string `json:"archetype_title"`
	Description    string `json:"description"`
	AvatarID       string `json:"avatar_id"`
	PowerLevel     int    `json:"power_level"`
}

var allowedAvatarIDs = []string{
	"KUNG_FU_FOX",
	"LION",
	"NINJA_TURTLE",
	"PENGU",
	"SPORTY_CAT",
	"WORKOUT_WOLF",
}

const (
	defaultAvatarID    = "PENGU"
	defaultArchetype   = "The Strategic Pengu"
	defaultDescription = "You're great at shrinking the goal while still moving forward. Slow and steady, consistency wins."
	defaultPowerLevel  = 50
	personaCallTimeout = 12 * time.Second
)

// Persona generates the archetype as strict JSON and sanitizes every
// field: unknown avatars fall back to the default member, power level is
// rounded and clamped into [1,100], missing texts get fixed defaults.
func (s *Service) Persona(ctx context.Context, req PersonaRequest) (Persona, error) {
	daysCompact, doneDays, totalDays := compactDays(req.Last7Days)
	langLabel := textutil.LanguageLabel(req.Language)

	prompt := fmt.Sprintf(personaPrompt,
		strings.Join(allowedAvatarIDs, ", "), langLabel, langLabel,
		req.Goal, req.CompletionRate7d, req.Streak,
		doneDays, totalDays, daysCompact,
		transcriptOrEmpty(req.History, analysisWindow))

	raw, err := s.llm.Complete(ctx, prompt, personaCallTimeout)
	if err != nil {
		return Persona{}, fmt.Errorf("persona completion: %w", err)
	}
	obj, err := extract.JSONObject(raw)
	if err != nil {
		return Persona{}, fmt.Errorf("persona output: %w", err)
	}

	p := Persona{
		ArchetypeTitle: stringField(obj, "archetype_title"),
		Description:    stringField(obj, "description"),
		AvatarID:       strings.ToUpper(stringField(obj, "avatar_id")),
		PowerLevel:     coercePowerLevel(obj["power_level"]),
	}

	if !isAllowedAvatar(p.AvatarID) {
		p.AvatarID = defaultAvatarID
	}
	if p.ArchetypeTitle == "" {
		p.ArchetypeTitle = defaultArchetype
	}
	if p.Description == "" {
		p.Description = defaultDescription
	}

	trace.Emit(s.tracer, "persona", "avatar", p.AvatarID, "power_level", p.PowerLevel)
	return p, nil
}

func isAllowedAvatar(id string) bool {
	for _, allowed := range allowedAvatarIDs {
		if id == allowed {
			return true
		}
	}
	return false
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func coercePowerLevel(v any) int {
	n, ok := v.(float64)
	if !ok {
		return defaultPowerLevel
	}
	level := int(math.Round(n))
	if level < 1 {
		return 1
	}
	if level > 100 {
		return 100
	}
	return level
}
