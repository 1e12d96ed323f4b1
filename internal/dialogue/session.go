package dialogue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the dialogue position of a session.
type State string

const (
	StateIntake     State = "intake"
	StateEvaluation State = "evaluation"
	StateDeepening  State = "deepening"
	StateReferral   State = "referral"
	StateBooking    State = "booking"
	StateDone       State = "done"
)

// Role identifies who produced an Interaction.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// MaxHistory bounds Session.History; the oldest entries are evicted first.
const MaxHistory = 100

// Interaction is one line of the conversation log. Never modified after append.
type Interaction struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Symptom   string    `json:"symptom,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the per-conversation snapshot. It is a plain record: the web
// layer decodes it at the start of a request and encodes it at the end, so no
// state is shared between requests.
type Session struct {
	ID               string        `json:"id"`
	State            State         `json:"state"`
	CurrentSymptom   string        `json:"current_symptom,omitempty"`
	OnsetDate        string        `json:"onset_date,omitempty"`
	History          []Interaction `json:"history"`
	InteractionCount int           `json:"interaction_count"`
	EngagementScore  float64       `json:"engagement_score"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// NewSession starts a conversation in Intake.
func NewSession(now time.Time) Session {
	return Session{
		ID:        uuid.NewString(),
		State:     StateIntake,
		History:   []Interaction{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Encode serializes the session for the transport store.
func (s Session) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("dialogue: encode session: %w", err)
	}
	return data, nil
}

// DecodeSession restores a session produced by Encode.
func DecodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("dialogue: decode session: %w", err)
	}
	if !s.State.valid() {
		return Session{}, fmt.Errorf("dialogue: decode session: unknown state %q", s.State)
	}
	if s.History == nil {
		s.History = []Interaction{}
	}
	return s, nil
}

// BotTexts returns every bot line in the history, oldest first.
func (s Session) BotTexts() []string {
	var out []string
	for _, it := range s.History {
		if it.Role == RoleBot {
			out = append(out, it.Text)
		}
	}
	return out
}

func (st State) valid() bool {
	switch st {
	case StateIntake, StateEvaluation, StateDeepening, StateReferral, StateBooking, StateDone:
		return true
	}
	return false
}

// appendInteraction returns a copy of the session with it appended. The history
// slice is always reallocated so snapshots never share a backing array.
func (s Session) appendInteraction(it Interaction) Session {
	history := make([]Interaction, 0, len(s.History)+1)
	history = append(history, s.History...)
	history = append(history, it)
	if over := len(history) - MaxHistory; over > 0 {
		history = history[over:]
	}
	s.History = history
	return s
}

// Engagement is the crude proxy for how much a message drew the user out:
// one point per ten characters, clamped to [1, 10].
func Engagement(userText string) float64 {
	score := float64(len([]rune(userText))) / 10
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
