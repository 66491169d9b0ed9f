package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/humanklu/hkp/internal/cache"
	"github.com/humanklu/hkp/internal/model"
)

// Summarizer produces a report summary for inputs that lack one. It runs
// after scoring and writes only into the rendered report, never into the
// score, audit, or ledger records.
type Summarizer struct {
	provider Provider
	config   Config
	cache    cache.Cache // nil when caching is disabled
}

// NewSummarizer creates a summarizer, wiring the configured provider and
// an optional summary cache
func NewSummarizer(config Config, cacheCfg model.CacheConfig) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	var c cache.Cache
	if cacheCfg.Enabled && cacheCfg.Dir != "" {
		c = cache.NewLayeredCache(cacheCfg.TTL, cacheCfg.Dir, cacheCfg.TTL)
	}

	return &Summarizer{
		provider: provider,
		config:   config,
		cache:    c,
	}, nil
}

// Summarize returns a summary for the record, from cache when possible.
// With strict evidence enabled, a response citing any URI outside the
// claims' source URIs is rejected.
func (s *Summarizer) Summarize(ctx context.Context, rec *model.InputRecord, claims []model.Claim, sci *model.ScoreRecord) (string, error) {
	key, err := s.cacheKey(rec)
	if err == nil && s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			return string(cached), nil
		}
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Prompt:    BuildPrompt(rec, claims, sci),
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	if s.config.StrictEvidence {
		allowed := make(map[string]bool)
		for _, c := range claims {
			if uri := c.SourceURI(); uri != "" {
				allowed[uri] = true
			}
		}
		for _, cited := range extractURLs(resp.Summary) {
			if !allowed[cited] {
				return "", fmt.Errorf("citation leak: summary cited disallowed URI: %s", cited)
			}
		}
	}

	if s.cache != nil && key != "" {
		_ = s.cache.Set(key, []byte(resp.Summary), 0)
	}

	return resp.Summary, nil
}

func (s *Summarizer) cacheKey(rec *model.InputRecord) (string, error) {
	content, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return cache.Key(content), nil
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)]+`)

// extractURLs pulls distinct http(s) URLs out of generated text
func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, u := range matches {
		u = strings.TrimRight(u, ".,;:!?")
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique
}
