package responses

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/wolfman30/equilibra/internal/catalog"
	"github.com/wolfman30/equilibra/internal/dialogue"
	"github.com/wolfman30/equilibra/internal/safety"
	"github.com/wolfman30/equilibra/pkg/logging"
)

// Strategy names, also used as metric labels.
const (
	SourceCrisis    = "crisis"
	SourceLearned   = "learned"
	SourceGenerated = "generated"
	SourceCatalog   = "catalog"
	SourceStatic    = "static"
)

// Strategy is one step of the reply chain. ok=false falls through to the next.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, req dialogue.ReplyRequest) (text string, ok bool)
}

// CrisisStrategy short-circuits with the safety message.
type CrisisStrategy struct {
	detector *safety.Detector
}

func NewCrisisStrategy(d *safety.Detector) *CrisisStrategy {
	if d == nil {
		d = safety.NewDetector()
	}
	return &CrisisStrategy{detector: d}
}

func (s *CrisisStrategy) Name() string { return SourceCrisis }

func (s *CrisisStrategy) Attempt(ctx context.Context, req dialogue.ReplyRequest) (string, bool) {
	match, ok := s.detector.Detect(ctx, req.UserText)
	if !ok {
		return "", false
	}
	return match.Message, true
}

// LearnedStrategy reuses the best scoring reply for the symptom.
type LearnedStrategy struct {
	store *EffectivenessStore
}

func NewLearnedStrategy(store *EffectivenessStore) *LearnedStrategy {
	return &LearnedStrategy{store: store}
}

func (s *LearnedStrategy) Name() string { return SourceLearned }

func (s *LearnedStrategy) Attempt(ctx context.Context, req dialogue.ReplyRequest) (string, bool) {
	if s.store == nil || req.Symptom == "" {
		return "", false
	}
	return s.store.BestFor(req.Symptom)
}

// TextChain is the model fallback chain used for generation.
type TextChain interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

const systemPrompt = "Eres un acompañante de apoyo emocional para una consulta psicológica en Ecuador. " +
	"Responde en español, con calidez y sin juzgar, en dos o tres oraciones completas. " +
	"No diagnostiques ni recomiendes medicamentos. Termina con una pregunta abierta que invite a seguir conversando."

// historyWindow is how many past lines go into the prompt.
const historyWindow = 6

// GeneratedStrategy asks the text-generation chain for a reply.
type GeneratedStrategy struct {
	chain  TextChain
	logger *logging.Logger
}

func NewGeneratedStrategy(chain TextChain, logger *logging.Logger) *GeneratedStrategy {
	if logger == nil {
		logger = logging.Default()
	}
	return &GeneratedStrategy{chain: chain, logger: logger}
}

func (s *GeneratedStrategy) Name() string { return SourceGenerated }

func (s *GeneratedStrategy) Attempt(ctx context.Context, req dialogue.ReplyRequest) (string, bool) {
	if s.chain == nil {
		return "", false
	}
	text, err := s.chain.Generate(ctx, systemPrompt, buildUserPrompt(req))
	if err != nil {
		s.logger.Warn("text generation unavailable, falling back", "error", err)
		return "", false
	}
	return text, true
}

func buildUserPrompt(req dialogue.ReplyRequest) string {
	var b strings.Builder
	if req.Symptom != "" {
		fmt.Fprintf(&b, "Motivo principal: %s\n", req.Symptom)
	}
	history := req.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) > 0 {
		b.WriteString("Conversación reciente:\n")
		for _, it := range history {
			speaker := "Usuario"
			if it.Role == dialogue.RoleBot {
				speaker = "Acompañante"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, it.Text)
		}
	}
	fmt.Fprintf(&b, "Mensaje actual del usuario: %s", req.UserText)
	return b.String()
}

// CatalogStrategy serves canned replies for the symptom the user is talking
// about, skipping any already said in this conversation.
type CatalogStrategy struct{}

func (CatalogStrategy) Name() string { return SourceCatalog }

func (CatalogStrategy) Attempt(ctx context.Context, req dialogue.ReplyRequest) (string, bool) {
	symptom, ok := catalog.DetectSymptom(req.UserText)
	if !ok {
		symptom = req.Symptom
	}
	said := make(map[string]struct{})
	for _, it := range req.History {
		if it.Role == dialogue.RoleBot {
			said[it.Text] = struct{}{}
		}
	}
	for _, reply := range catalog.Replies(symptom) {
		if _, dup := said[reply]; !dup {
			return reply, true
		}
	}
	return "", false
}

// StaticStrategy picks a generic prompt uniformly at random. It always answers.
type StaticStrategy struct {
	intn func(n int) int
}

func NewStaticStrategy() *StaticStrategy {
	return &StaticStrategy{intn: rand.Intn}
}

func (s *StaticStrategy) Name() string { return SourceStatic }

func (s *StaticStrategy) Attempt(ctx context.Context, req dialogue.ReplyRequest) (string, bool) {
	prompts := catalog.GenericPrompts()
	return prompts[s.intn(len(prompts))], true
}
