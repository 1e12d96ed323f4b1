// Package llm wraps the external text-generation services behind one narrow
// contract and tries an ordered list of models until one answers cleanly.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/pkg/logging"
)

var (
	// ErrEmpty is returned when a provider answers with no text.
	ErrEmpty = errors.New("llm: empty completion")
	// ErrTruncated is returned when a completion stops mid-sentence.
	ErrTruncated = errors.New("llm: completion looks truncated")
	// ErrNoModels is returned by a chain with nothing to try.
	ErrNoModels = errors.New("llm: no models configured")
)

// Generator produces one completion for a system and user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user, model string) (string, error)
}

// sentenceEnders are the runes a finished reply may end with.
const sentenceEnders = ".!?…»\")"

// LooksTruncated reports whether text ends without sentence-final punctuation.
func LooksTruncated(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	return !strings.ContainsRune(sentenceEnders, last)
}

// ModelChain tries each model in order and returns the first clean reply.
type ModelChain struct {
	generator Generator
	models    []string
	timeout   time.Duration
	metrics   *metrics.ChatMetrics
	logger    *logging.Logger
}

func NewModelChain(gen Generator, models []string, timeout time.Duration, logger *logging.Logger) *ModelChain {
	if gen == nil {
		panic("llm: generator cannot be nil")
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	cleaned := make([]string, 0, len(models))
	for _, m := range models {
		if m = strings.TrimSpace(m); m != "" {
			cleaned = append(cleaned, m)
		}
	}
	return &ModelChain{generator: gen, models: cleaned, timeout: timeout, logger: logger}
}

// WithMetrics records per-call latency.
func (c *ModelChain) WithMetrics(m *metrics.ChatMetrics) *ModelChain {
	c.metrics = m
	return c
}

// Models returns the configured model order.
func (c *ModelChain) Models() []string {
	return append([]string(nil), c.models...)
}

// Generate returns the first non-empty, non-truncated reply. Each model gets
// its own timeout; the joined error lists why every model was skipped.
func (c *ModelChain) Generate(ctx context.Context, system, user string) (string, error) {
	if len(c.models) == 0 {
		return "", ErrNoModels
	}
	var errs []error
	for _, model := range c.models {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		text, err := c.attempt(ctx, system, user, model)
		if err == nil {
			return text, nil
		}
		c.logger.Debug("model skipped", "model", model, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", model, err))
	}
	return "", errors.Join(errs...)
}

func (c *ModelChain) attempt(ctx context.Context, system, user, model string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	began := time.Now()
	text, err := c.generator.Generate(callCtx, system, user, model)
	c.metrics.ObserveExternalCall("llm", err, time.Since(began).Seconds())
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	if LooksTruncated(text) {
		return "", ErrTruncated
	}
	return text, nil
}
