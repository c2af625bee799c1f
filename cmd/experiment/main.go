// Command experiment runs a small golden-dataset evaluation against a
// running backend over its /chat contract and records the judged empathy
// scores per case.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

type experimentCase struct {
	ID      string `json:"id"`
	Goal    string `json:"goal"`
	Message string `json:"message"`
}

var goldenDataset = []experimentCase{
	{ID: "tired", Goal: "Run 5km every day", Message: "I'm exhausted and I hate running."},
	{ID: "busy", Goal: "Workout 1 hour", Message: "I only have 2 minutes today."},
	{ID: "lazy", Goal: "Read 20 pages", Message: "I feel lazy. Convince me without making me feel guilty."},
	{ID: "anxious", Goal: "Meditate 10 minutes", Message: "I'm anxious and can't focus."},
	{ID: "motivated", Goal: "Drink 2L water", Message: "Ready for action. Give me a concrete plan."},
}

type caseResult struct {
	CaseID              string  `json:"case_id"`
	Goal                string  `json:"goal"`
	UserMessage         string  `json:"user_message"`
	AIResponse          string  `json:"ai_response"`
	EmpathyScore        *int    `json:"empathy_score"`
	EmpathyRationale    *string `json:"empathy_rationale"`
	PromptVersion       string  `json:"prompt_version"`
	RetryUsed           bool    `json:"retry_used"`
	InitialEmpathyScore *int    `json:"initial_empathy_score"`
	DurationMS          int64   `json:"duration_ms"`
}

type runSummary struct {
	RunID      string       `json:"run_id"`
	Label      string       `json:"label"`
	BaseURL    string       `json:"base_url"`
	Cases      int          `json:"cases"`
	AvgEmpathy float64      `json:"avg_empathy"`
	Outputs    []caseResult `json:"outputs"`
}

func main() {
	_ = godotenv.Load()

	baseURL := flag.String("base-url", envOr("API_BASE_URL", "http://localhost:8000"), "backend base URL")
	label := flag.String("label", envOr("EXPERIMENT_LABEL", "local"), "experiment label (e.g. v1, retry-on)")
	timeout := flag.Duration("timeout", 90*time.Second, "per-case timeout")
	concurrency := flag.Int("concurrency", 1, "cases in flight at once")
	flag.Parse()

	summary, err := runExperiment(context.Background(), *baseURL, *label, *timeout, *concurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR running experiment: %v\n", err)
		os.Exit(2)
	}

	for _, out := range summary.Outputs {
		fmt.Printf("- %s: empathy=%s retry=%v duration_ms=%d\n",
			out.CaseID, formatScore(out.EmpathyScore), out.RetryUsed, out.DurationMS)
	}

	outPath := fmt.Sprintf("experiment_%s_%s.json", summary.RunID, summary.Label)
	if err := writeSummary(outPath, summary); err != nil {
		fmt.Fprintf(os.Stderr, "could not write output JSON: %v\n", err)
	} else {
		fmt.Printf("Saved: %s\n", outPath)
	}
	fmt.Printf("Average empathy (1-5): %.3f\n", summary.AvgEmpathy)
}

func runExperiment(ctx context.Context, baseURL, label string, timeout time.Duration, concurrency int) (*runSummary, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	client := &http.Client{Timeout: timeout}
	outputs := make([]caseResult, len(goldenDataset))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, c := range goldenDataset {
		g.Go(func() error {
			out, err := runCase(ctx, client, baseURL, c)
			if err != nil {
				return fmt.Errorf("case %s: %w", c.ID, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var sum float64
	var scored int
	for _, out := range outputs {
		if out.EmpathyScore != nil {
			sum += float64(*out.EmpathyScore)
			scored++
		}
	}
	avg := 0.0
	if scored > 0 {
		avg = sum / float64(scored)
	}

	return &runSummary{
		RunID:      uuid.NewString()[:8],
		Label:      label,
		BaseURL:    baseURL,
		Cases:      len(outputs),
		AvgEmpathy: avg,
		Outputs:    outputs,
	}, nil
}

func runCase(ctx context.Context, client *http.Client, baseURL string, c experimentCase) (caseResult, error) {
	payload := map[string]any{
		"user_message": c.Message,
		"current_goal": c.Goal,
		"chat_history": []any{},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return caseResult{}, err
	}

	url := strings.TrimRight(baseURL, "/") + "/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return caseResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return caseResult{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return caseResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return caseResult{}, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, truncate(string(raw), 400))
	}

	var chat struct {
		Response            string  `json:"response"`
		EmpathyScore        *int    `json:"empathy_score"`
		EmpathyRationale    *string `json:"empathy_rationale"`
		PromptVersion       string  `json:"prompt_version"`
		RetryUsed           bool    `json:"retry_used"`
		InitialEmpathyScore *int    `json:"initial_empathy_score"`
	}
	if err := json.Unmarshal(raw, &chat); err != nil {
		return caseResult{}, fmt.Errorf("decode response: %w", err)
	}

	return caseResult{
		CaseID:              c.ID,
		Goal:                c.Goal,
		UserMessage:         c.Message,
		AIResponse:          chat.Response,
		EmpathyScore:        chat.EmpathyScore,
		EmpathyRationale:    chat.EmpathyRationale,
		PromptVersion:       chat.PromptVersion,
		RetryUsed:           chat.RetryUsed,
		InitialEmpathyScore: chat.InitialEmpathyScore,
		DurationMS:          time.Since(started).Milliseconds(),
	}, nil
}

func writeSummary(path string, summary *runSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func formatScore(score *int) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *score)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
