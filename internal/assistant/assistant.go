// Package assistant answers free-text questions about one company's
// current-month sales data. The hosted model never executes anything: it is
// asked to emit a small JSON aggregation instruction which is interpreted
// locally against only the dataset it was given.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"goaltrack-service/pkg/config"
)

// maxHistoryTurns bounds how much prior conversation is sent for context
const maxHistoryTurns = 4

// Turn is one prior exchange in the conversation
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant wraps the model client and the aggregation interpreter
type Assistant struct {
	client *Client

	mu    sync.Mutex
	model string
}

// New builds an assistant from the service LLM configuration
func New(cfg *config.LLMConfig) *Assistant {
	return &Assistant{client: NewClient(cfg)}
}

// resolveModel picks the model variant once and caches it for the process
func (a *Assistant) resolveModel(ctx context.Context) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.model == "" {
		a.model = a.client.ResolveModel(ctx)
	}
	return a.model
}

// Answer translates a question about the dataset into an aggregation
// instruction via the model, runs it locally and returns a readable answer.
// The dataset must already be scoped to the calling company; nothing beyond
// it ever reaches the interpreter.
func (a *Assistant) Answer(ctx context.Context, ds Dataset, question string, history []Turn) (string, error) {
	prompt := buildPrompt(ds, question, history)

	raw, err := a.client.Generate(ctx, a.resolveModel(ctx), prompt)
	if err != nil {
		return "", err
	}

	ins, err := parseInstruction(raw)
	if err != nil {
		return "", fmt.Errorf("could not interpret the model's answer: %w", err)
	}

	result, err := Execute(ds, ins)
	if err != nil {
		return "", fmt.Errorf("could not compute the answer: %w", err)
	}
	return result, nil
}

// buildPrompt renders the dataset, the recent conversation and the question
// into a single instruction-emitting prompt
func buildPrompt(ds Dataset, question string, history []Turn) string {
	var b strings.Builder

	b.WriteString("You are a data analyst for a sales dashboard. ")
	b.WriteString("Answer by emitting ONLY a JSON object of the form ")
	b.WriteString(`{"op":"sum|avg|count|min|max","column":"<name>","group_by":"<name, optional>"}`)
	b.WriteString(" that computes the answer over the dataset below. No prose, no code.\n\n")

	b.WriteString("Dataset columns: ")
	b.WriteString(strings.Join(ds.Columns, ", "))
	b.WriteString("\nDataset rows:\n")
	for _, row := range ds.Rows {
		b.WriteString(strings.Join(row, ", "))
		b.WriteString("\n")
	}

	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	if len(history) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, turn := range history {
			b.WriteString(turn.Role)
			b.WriteString(": ")
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// parseInstruction extracts the JSON instruction from the model output,
// tolerating surrounding prose or code fences
func parseInstruction(raw string) (Instruction, error) {
	var ins Instruction

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ins, fmt.Errorf("no instruction found in %q", raw)
	}

	if err := json.Unmarshal([]byte(raw[start:end+1]), &ins); err != nil {
		return ins, err
	}
	if ins.Op == "" {
		return ins, fmt.Errorf("instruction missing operation")
	}
	return ins, nil
}
