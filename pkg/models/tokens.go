package models

// TokenUsage is the reported or regex-recovered token accounting for a
// single agent invocation.
type TokenUsage struct {
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	TotalTokens         int64   `json:"totalTokens"`
	Model               string  `json:"model,omitempty"`
	CacheReadTokens     int64   `json:"cacheReadTokens,omitempty"`
	CacheCreationTokens int64   `json:"cacheCreationTokens,omitempty"`
	CostUsd             float64 `json:"costUsd,omitempty"`
}

// ContextUsage extends TokenUsage with a running view of how much of the
// model's context window the feature has consumed so far, computed
// post-hoc from the prior completed TaskEntries of the same feature.
type ContextUsage struct {
	TokenUsage
	ContextWindowSize      int64   `json:"contextWindowSize"`
	UtilizationPercent     float64 `json:"utilizationPercent"`
	CumulativeInputTokens  int64   `json:"cumulativeInputTokens"`
	CumulativeUtilization  float64 `json:"cumulativeUtilization"`
	ModelFamily            string  `json:"modelFamily,omitempty"`
}

// PhaseMetric records timing and accumulated cost for one phase.
type PhaseMetric struct {
	StartedAt    string  `json:"startedAt"`
	CompletedAt  string  `json:"completedAt,omitempty"`
	ElapsedMs    int64   `json:"elapsedMs,omitempty"`
	CostUsd      float64 `json:"costUsd,omitempty"`
	InputTokens  int64   `json:"inputTokens,omitempty"`
	OutputTokens int64   `json:"outputTokens,omitempty"`
}

// ModelFamily buckets a concrete model string into its family for
// ContextUsage reporting (e.g. "claude-opus-4-5-20251101" -> "claude").
func ModelFamily(model string) string {
	for i := 0; i < len(model); i++ {
		if model[i] == '-' {
			return model[:i]
		}
	}
	return model
}

// ContextWindowSizes gives the known context window, in tokens, for each
// model family. Unknown families report 0 (unknown, not an error).
var ContextWindowSizes = map[string]int64{
	"claude": 200_000,
	"gemini": 1_000_000,
	"gpt":    400_000,
}
