package responses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/equilibra/internal/catalog"
	"github.com/wolfman30/equilibra/internal/dialogue"
	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/internal/safety"
	"github.com/wolfman30/equilibra/pkg/logging"
)

type stubChain struct {
	text  string
	err   error
	calls int
	user  string
}

func (s *stubChain) Generate(ctx context.Context, system, user string) (string, error) {
	s.calls++
	s.user = user
	return s.text, s.err
}

func TestSelector_CrisisBeatsEverything(t *testing.T) {
	store, clock := newTestStore(t, &memoryPersister{})
	require.NoError(t, store.Record(context.Background(), "Tristeza", "learned reply", 10))
	clock.Advance(2 * time.Hour)
	chain := &stubChain{text: "Generated reply."}
	sel := NewSelector(store, chain, nil, logging.Discard())

	reply := sel.Respond(context.Background(), dialogue.ReplyRequest{Symptom: "Tristeza", UserText: "Ya NO quiero vivir"})
	assert.Equal(t, safety.SafetyMessage, reply)
	assert.Zero(t, chain.calls)
	assert.Equal(t, 1, store.Snapshot()["Tristeza"]["learned reply"].TimesUsed, "crisis replies are not recorded")
}

func TestSelector_LearnedBeforeGenerated(t *testing.T) {
	store, clock := newTestStore(t, &memoryPersister{})
	require.NoError(t, store.Record(context.Background(), "Ansiedad", "learned reply", 8))
	clock.Advance(2 * time.Hour)
	chain := &stubChain{text: "Generated reply."}
	sel := NewSelector(store, chain, nil, logging.Discard())

	reply := sel.Respond(context.Background(), dialogue.ReplyRequest{Symptom: "Ansiedad", UserText: "me cuesta respirar cuando salgo"})
	assert.Equal(t, "learned reply", reply)
	assert.Zero(t, chain.calls)
	assert.Equal(t, 2, store.Snapshot()["Ansiedad"]["learned reply"].TimesUsed)

	// Just used, so the next turn goes to generation.
	reply = sel.Respond(context.Background(), dialogue.ReplyRequest{Symptom: "Ansiedad", UserText: "sí"})
	assert.Equal(t, "Generated reply.", reply)
	assert.Equal(t, 1, chain.calls)
}

func TestSelector_GeneratorFailureFallsToCatalog(t *testing.T) {
	store, _ := newTestStore(t, &memoryPersister{})
	chain := &stubChain{err: errors.New("all models failed")}
	sel := NewSelector(store, chain, nil, logging.Discard())

	req := dialogue.ReplyRequest{Symptom: "Ansiedad", UserText: "casi no duermo nada"}
	reply := sel.Respond(context.Background(), req)
	replies := catalog.Replies("Problemas de sueño")
	require.NotEmpty(t, replies)
	assert.Equal(t, replies[0], reply)

	req.History = []dialogue.Interaction{{Role: dialogue.RoleBot, Text: replies[0]}}
	assert.Equal(t, replies[1], sel.Respond(context.Background(), req), "replies already said are skipped")
}

func TestSelector_StaticWhenCatalogExhausted(t *testing.T) {
	store, _ := newTestStore(t, &memoryPersister{})
	sel := NewSelector(store, nil, nil, logging.Discard())

	var history []dialogue.Interaction
	for _, r := range catalog.Replies("Ansiedad") {
		history = append(history, dialogue.Interaction{Role: dialogue.RoleBot, Text: r})
	}
	reply := sel.Respond(context.Background(), dialogue.ReplyRequest{Symptom: "Ansiedad", UserText: "ok", History: history})
	assert.Contains(t, catalog.GenericPrompts(), reply)
	assert.Equal(t, 1, store.Snapshot()["Ansiedad"][reply].TimesUsed)
}

func TestSelector_RecordsEngagement(t *testing.T) {
	store, _ := newTestStore(t, &memoryPersister{})
	chain := &stubChain{text: "Cuéntame más."}
	sel := NewSelector(store, chain, nil, logging.Discard())

	long := "Últimamente siento que no puedo concentrarme en nada y me preocupa mucho el trabajo y mi familia, todo a la vez sin parar nunca."
	sel.Respond(context.Background(), dialogue.ReplyRequest{Symptom: "Estrés", UserText: long})
	rec := store.Snapshot()["Estrés"]["Cuéntame más."]
	assert.InDelta(t, 10.0, rec.TotalScore, 1e-9)

	sel.Respond(context.Background(), dialogue.ReplyRequest{Symptom: "Estrés", UserText: "sí"})
	rec = store.Snapshot()["Estrés"]["Cuéntame más."]
	assert.InDelta(t, 11.0, rec.TotalScore, 1e-9)
	assert.Equal(t, 2, rec.TimesUsed)
}

func TestSelector_RecordFailureIsSwallowed(t *testing.T) {
	store, _ := newTestStore(t, &memoryPersister{saveErr: errors.New("read-only")})
	sel := NewSelector(store, &stubChain{text: "Aquí estoy."}, nil, logging.Discard())
	assert.Equal(t, "Aquí estoy.", sel.Respond(context.Background(), dialogue.ReplyRequest{Symptom: "Soledad", UserText: "hola"}))
}

func TestSelector_PromptCarriesContext(t *testing.T) {
	store, _ := newTestStore(t, &memoryPersister{})
	chain := &stubChain{text: "Ok."}
	sel := NewSelector(store, chain, nil, logging.Discard())

	sel.Respond(context.Background(), dialogue.ReplyRequest{
		Symptom:  "Ansiedad",
		UserText: "hoy fue peor",
		History:  []dialogue.Interaction{{Role: dialogue.RoleBot, Text: "¿Cómo dormiste?"}},
	})
	assert.Contains(t, chain.user, "Motivo principal: Ansiedad")
	assert.Contains(t, chain.user, "Acompañante: ¿Cómo dormiste?")
	assert.Contains(t, chain.user, "hoy fue peor")
}

func TestSelector_ObservesSource(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewChatMetrics(reg)
	store, _ := newTestStore(t, &memoryPersister{})
	sel := NewSelector(store, &stubChain{text: "Ok."}, m, logging.Discard())

	sel.Respond(context.Background(), dialogue.ReplyRequest{Symptom: "Ansiedad", UserText: "hola"})
	sel.Respond(context.Background(), dialogue.ReplyRequest{Symptom: "Ansiedad", UserText: "quiero morir"})

	count, err := testutil.GatherAndCount(reg, "equilibra_dialogue_responses_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStaticStrategy_Uniform(t *testing.T) {
	s := NewStaticStrategy()
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		text, ok := s.Attempt(context.Background(), dialogue.ReplyRequest{})
		require.True(t, ok)
		seen[text] = true
	}
	assert.Len(t, seen, len(catalog.GenericPrompts()))
}
