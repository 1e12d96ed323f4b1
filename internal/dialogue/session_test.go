package dialogue

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionEncodeDecode(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	s := NewSession(now)
	s.CurrentSymptom = "Ansiedad"
	s = s.appendInteraction(Interaction{Role: RoleUser, Text: "hola", Timestamp: now})

	data, err := s.Encode()
	require.NoError(t, err)
	got, err := DecodeSession(data)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, StateIntake, got.State)
	require.Len(t, got.History, 1)
	assert.Equal(t, "hola", got.History[0].Text)
}

func TestDecodeSession_Rejects(t *testing.T) {
	_, err := DecodeSession([]byte(`{"id":"x","state":"limbo"}`))
	assert.Error(t, err)
	_, err = DecodeSession([]byte(`not json`))
	assert.Error(t, err)

	s, err := DecodeSession([]byte(`{"id":"x","state":"deepening"}`))
	require.NoError(t, err)
	assert.NotNil(t, s.History)
}

func TestBotTexts(t *testing.T) {
	s := NewSession(time.Now())
	s = s.appendInteraction(Interaction{Role: RoleUser, Text: "a"})
	s = s.appendInteraction(Interaction{Role: RoleBot, Text: "b"})
	s = s.appendInteraction(Interaction{Role: RoleBot, Text: "c"})
	assert.Equal(t, []string{"b", "c"}, s.BotTexts())
}

func TestEngagement(t *testing.T) {
	assert.Equal(t, 1.0, Engagement(""))
	assert.Equal(t, 1.0, Engagement("corto"))
	assert.InDelta(t, 2.5, Engagement(strings.Repeat("á", 25)), 1e-9)
	assert.Equal(t, 10.0, Engagement(strings.Repeat("x", 500)))
}
