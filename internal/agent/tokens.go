package agent

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// ModelPricing holds per-million-token pricing for cost calculation,
// including cache read/write rates.
type ModelPricing struct {
	InputPerMillion      float64
	OutputPerMillion     float64
	CacheReadPerMillion  float64
	CacheWritePerMillion float64
}

// DefaultModelPricing contains pricing for known models across all three
// supported agent families. Unknown models yield a zero cost, never an error.
var DefaultModelPricing = map[string]ModelPricing{
	"claude-opus-4-5-20251101":   {InputPerMillion: 15.00, OutputPerMillion: 75.00, CacheReadPerMillion: 1.50, CacheWritePerMillion: 18.75},
	"claude-sonnet-4-20250514":   {InputPerMillion: 3.00, OutputPerMillion: 15.00, CacheReadPerMillion: 0.30, CacheWritePerMillion: 3.75},
	"claude-3-5-sonnet-20241022": {InputPerMillion: 3.00, OutputPerMillion: 15.00, CacheReadPerMillion: 0.30, CacheWritePerMillion: 3.75},
	"claude-3-5-haiku-20241022":  {InputPerMillion: 0.80, OutputPerMillion: 4.00, CacheReadPerMillion: 0.08, CacheWritePerMillion: 1.00},
	"gemini-2.5-pro":             {InputPerMillion: 1.25, OutputPerMillion: 10.00},
	"gemini-2.5-flash":           {InputPerMillion: 0.30, OutputPerMillion: 2.50},
	"gpt-5-codex":                {InputPerMillion: 1.25, OutputPerMillion: 10.00},
}

func cost(model string, u *TokenUsage) float64 {
	pricing, ok := DefaultModelPricing[model]
	if !ok || u == nil {
		return 0
	}
	return float64(u.InputTokens)/1_000_000*pricing.InputPerMillion +
		float64(u.OutputTokens)/1_000_000*pricing.OutputPerMillion +
		float64(u.CacheReadTokens)/1_000_000*pricing.CacheReadPerMillion +
		float64(u.CacheCreationTokens)/1_000_000*pricing.CacheWritePerMillion
}

// resultJSON mirrors the claude-cli `--output-format stream-json --print`
// final result object
type resultJSON struct {
	Type   string `json:"type"`
	Result string `json:"result"`
	Usage  *struct {
		InputTokens              int64 `json:"input_tokens"`
		OutputTokens             int64 `json:"output_tokens"`
		CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
		CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	} `json:"usage"`
	ModelUsage map[string]struct {
		InputTokens  int64   `json:"input_tokens"`
		OutputTokens int64   `json:"output_tokens"`
		CostUsd      float64 `json:"cost_usd"`
	} `json:"modelUsage"`
	TotalCostUsd float64 `json:"total_cost_usd"`
}

// fallbackPatterns is a prioritized list of line-oriented regexes applied
// when stdout is not a single well-formed result JSON object. The first
// pattern to match on a given line wins for that field.
var fallbackPatterns = []struct {
	re    *regexp.Regexp
	field string
}{
	{regexp.MustCompile(`(?i)input[_ ]?tokens?\D*(\d+)`), "input"},
	{regexp.MustCompile(`(?i)output[_ ]?tokens?\D*(\d+)`), "output"},
	{regexp.MustCompile(`(?i)cache[_ ]?read[_ ]?tokens?\D*(\d+)`), "cache_read"},
	{regexp.MustCompile(`(?i)cache[_ ]?creation[_ ]?tokens?\D*(\d+)`), "cache_creation"},
	{regexp.MustCompile(`(?i)model[:=]\s*"?([a-zA-Z0-9._-]+)"?`), "model"},
}

// extractTokenUsage parses an agent invocation's stdout for usage
// information. It returns nil, "" when none could be extracted at all.
func extractTokenUsage(stdout string) (*TokenUsage, string) {
	var doc resultJSON
	if err := json.Unmarshal([]byte(stdout), &doc); err == nil && doc.Type == "result" {
		usage := &TokenUsage{}
		if doc.Usage != nil {
			usage.InputTokens = doc.Usage.InputTokens
			usage.OutputTokens = doc.Usage.OutputTokens
			usage.CacheReadTokens = doc.Usage.CacheReadInputTokens
			usage.CacheCreationTokens = doc.Usage.CacheCreationInputTokens
		}
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
		if len(doc.ModelUsage) > 0 {
			for model, mu := range doc.ModelUsage {
				usage.Model = model
				usage.InputTokens = mu.InputTokens
				usage.OutputTokens = mu.OutputTokens
				usage.TotalTokens = mu.InputTokens + mu.OutputTokens
				usage.CostUsd = mu.CostUsd
				break
			}
		} else if doc.TotalCostUsd > 0 {
			usage.CostUsd = doc.TotalCostUsd
		} else {
			usage.CostUsd = cost(usage.Model, usage)
		}
		return usage, doc.Result
	}

	usage := &TokenUsage{}
	matched := false
	for _, line := range splitLines(stdout) {
		for _, p := range fallbackPatterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			matched = true
			switch p.field {
			case "input":
				usage.InputTokens, _ = strconv.ParseInt(m[1], 10, 64)
			case "output":
				usage.OutputTokens, _ = strconv.ParseInt(m[1], 10, 64)
			case "cache_read":
				usage.CacheReadTokens, _ = strconv.ParseInt(m[1], 10, 64)
			case "cache_creation":
				usage.CacheCreationTokens, _ = strconv.ParseInt(m[1], 10, 64)
			case "model":
				usage.Model = m[1]
			}
		}
	}
	if !matched {
		return nil, ""
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	usage.CostUsd = cost(usage.Model, usage)
	return usage, ""
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
