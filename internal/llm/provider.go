// Package llm generates optional report summaries. Summaries are
// presentation only: they are produced after scoring and can never affect
// the ratio, ceiling, index, tier, or any hashed artifact content.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/humanklu/hkp/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a report summary for the given request
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)
}

// SummarizeRequest contains the input for summary generation
type SummarizeRequest struct {
	// Prompt is the full prompt, including the strict source allowlist
	Prompt string

	// Model is the provider-specific model name
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the provider's output
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// StrictEvidence rejects summaries citing URIs outside the claim set
	StrictEvidence bool

	// MaxTokens for response generation
	MaxTokens int
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:       c.Provider,
		Model:          c.Model,
		APIKey:         c.APIKey,
		BaseURL:        c.BaseURL,
		Timeout:        c.Timeout,
		StrictEvidence: c.StrictEvidence,
		MaxTokens:      c.MaxTokens,
	}
}

// BuildPrompt constructs the summary prompt with the strict URI allowlist
func BuildPrompt(rec *model.InputRecord, claims []model.Claim, sci *model.ScoreRecord) string {
	var uris []string
	for _, c := range claims {
		if uri := c.SourceURI(); uri != "" {
			uris = append(uris, uri)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are summarizing a HumanKlu claim report. The pipeline evaluates how well claims are calibrated and sourced - it NEVER asserts truth.

CRITICAL RULES:
1. You MUST ONLY cite URIs from this allowed list:
%s

2. DO NOT infer, speculate, or cite external sources beyond this list.
3. If claims are uncited or inferred, state that explicitly.
4. Describe calibration quality, never truth or falsity.

Report:
- Title: %s
- Topic: %s
- Human Calibration Index: %v/10
- Certification: %s
- Claims: %d (%.0f%% inferred)
`, joinURIs(uris), rec.Title, rec.Topic, sci.HCI, sci.CertLevel, len(claims), sci.InferredRatio*100)

	for i, c := range claims {
		if i >= 10 {
			fmt.Fprintf(&b, "... and %d more claims\n", len(claims)-10)
			break
		}
		fmt.Fprintf(&b, "- [%s/%s] %s\n", c.ID, c.EvidenceType, c.Text)
	}

	b.WriteString("\nProvide a 3-4 sentence summary of the report's subject and calibration quality.")
	return b.String()
}

func joinURIs(uris []string) string {
	if len(uris) == 0 {
		return "(No source URIs available)"
	}
	var b strings.Builder
	for i, uri := range uris {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more URIs", len(uris)-20)
			break
		}
		fmt.Fprintf(&b, "\n- %s", uri)
	}
	return b.String()
}
