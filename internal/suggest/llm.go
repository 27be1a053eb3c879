package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ganeshsabale-99/DMP-Project/pkg/llm"
)

const systemPrompt = `You write social media copy for a marketing team.
Answer with a single JSON object and nothing else, shaped as:
{"variations": ["..."], "hashtags": ["#..."], "predictedEngagement": {"likes": 0, "comments": 0, "shares": 0, "views": 0}}`

// LLMSuggester asks a chat model for suggestions
type LLMSuggester struct {
	provider llm.Provider
}

func NewLLMSuggester(p llm.Provider) *LLMSuggester {
	return &LLMSuggester{provider: p}
}

func (s *LLMSuggester) Suggest(ctx context.Context, req Request) (Suggestion, error) {
	prompt := fmt.Sprintf("Write %d post variations for %s about: %s.", req.Count, req.Platform, req.Topic)
	if req.Tone != "" {
		prompt += fmt.Sprintf(" Tone: %s.", req.Tone)
	}
	out, err := llm.Collect(ctx, s.provider, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return Suggestion{}, fmt.Errorf("generate suggestions: %w", err)
	}
	return parseCompletion(out), nil
}

// parseCompletion reads the JSON object in out. Models sometimes wrap it
// in prose or code fences; when no object parses every non-empty line
// becomes a variation.
func parseCompletion(out string) Suggestion {
	if start, end := strings.Index(out, "{"), strings.LastIndex(out, "}"); start >= 0 && end > start {
		var s Suggestion
		if err := json.Unmarshal([]byte(out[start:end+1]), &s); err == nil && len(s.Variations) > 0 {
			return s
		}
	}
	var s Suggestion
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		s.Variations = append(s.Variations, line)
	}
	return s
}
