package models

import "strings"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single turn of coaching history as supplied by the client.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ParseRole normalizes the loose role aliases clients send. Unknown roles
// report ok=false and are dropped from transcripts.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user", "human":
		return RoleUser, true
	case "assistant", "model", "ai", "bot":
		return RoleAssistant, true
	default:
		return "", false
	}
}
