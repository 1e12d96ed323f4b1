package dialogue

import "strings"

// IntentPolicy infers appointment intent from free text. The structured
// request_appointment action is honored regardless of policy.
type IntentPolicy interface {
	WantsAppointment(text string) bool
}

// ExplicitOnly never infers intent from text.
type ExplicitOnly struct{}

func (ExplicitOnly) WantsAppointment(string) bool { return false }

// DefaultIntentKeywords are matched after lowercasing and folding accents.
var DefaultIntentKeywords = []string{"cita", "consultar", "doctor", "psicologo", "psicologa", "agendar"}

// KeywordIntent fires when any keyword appears as a whole word in the text.
type KeywordIntent struct {
	keywords []string
}

func NewKeywordIntent(keywords ...string) *KeywordIntent {
	if len(keywords) == 0 {
		keywords = DefaultIntentKeywords
	}
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = fold(kw); kw != "" {
			folded = append(folded, kw)
		}
	}
	return &KeywordIntent{keywords: folded}
}

func (k *KeywordIntent) WantsAppointment(text string) bool {
	for _, word := range words(text) {
		for _, kw := range k.keywords {
			if word == kw {
				return true
			}
		}
	}
	return false
}

var affirmatives = map[string]bool{
	"si": true, "claro": true, "ok": true, "okay": true, "dale": true,
	"vale": true, "bueno": true, "yes": true, "por supuesto": true,
	"de acuerdo": true, "claro que si": true, "si por favor": true,
}

// IsAffirmative reports whether text is a yes-class answer.
func IsAffirmative(text string) bool {
	return affirmatives[strings.Join(words(text), " ")]
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u",
)

func fold(s string) string {
	return strings.ToLower(accentFolder.Replace(strings.TrimSpace(s)))
}

// words splits folded text on anything that is not a letter or digit.
func words(text string) []string {
	return strings.FieldsFunc(fold(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == 'ñ')
	})
}
