// Package responses chooses the bot's reply: a crisis override, a learned
// reply, a generated one, a canned one or a generic prompt, in that order.
package responses

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/equilibra/internal/catalog"
	"github.com/wolfman30/equilibra/internal/dialogue"
	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/pkg/logging"
)

// Selector runs the strategy chain and feeds each answer back into the store.
type Selector struct {
	strategies []Strategy
	store      *EffectivenessStore
	metrics    *metrics.ChatMetrics
	logger     *logging.Logger
	tracer     trace.Tracer
}

// NewSelector wires the default chain. chain may be nil to disable generation.
func NewSelector(store *EffectivenessStore, chain TextChain, m *metrics.ChatMetrics, logger *logging.Logger) *Selector {
	if logger == nil {
		logger = logging.Default()
	}
	return NewSelectorWithStrategies(store, m, logger,
		NewCrisisStrategy(nil),
		NewLearnedStrategy(store),
		NewGeneratedStrategy(chain, logger),
		CatalogStrategy{},
		NewStaticStrategy(),
	)
}

// NewSelectorWithStrategies uses an explicit chain.
func NewSelectorWithStrategies(store *EffectivenessStore, m *metrics.ChatMetrics, logger *logging.Logger, strategies ...Strategy) *Selector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Selector{
		strategies: strategies,
		store:      store,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer("equilibra/responses"),
	}
}

// Respond returns the first strategy's answer. It never fails.
func (s *Selector) Respond(ctx context.Context, req dialogue.ReplyRequest) string {
	ctx, span := s.tracer.Start(ctx, "responses.select")
	defer span.End()

	for _, strategy := range s.strategies {
		text, ok := strategy.Attempt(ctx, req)
		if !ok || text == "" {
			continue
		}
		name := strategy.Name()
		span.SetAttributes(attribute.String("response.source", name))
		s.metrics.ObserveResponse(name)
		if name != SourceCrisis {
			s.record(ctx, req, text)
		}
		return text
	}
	return catalog.GenericPrompts()[0]
}

func (s *Selector) record(ctx context.Context, req dialogue.ReplyRequest, text string) {
	if s.store == nil || req.Symptom == "" {
		return
	}
	if err := s.store.Record(ctx, req.Symptom, text, dialogue.Engagement(req.UserText)); err != nil {
		s.logger.Warn("effectiveness record failed", "symptom", req.Symptom, "error", err)
	}
}

var _ dialogue.Responder = (*Selector)(nil)
