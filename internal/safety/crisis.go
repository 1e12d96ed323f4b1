// Package safety detects self-harm indicators in user text.
package safety

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var crisisTracer = otel.Tracer("equilibra/crisis-detector")

// SafetyMessage is returned verbatim whenever a crisis indicator matches.
const SafetyMessage = "Lo que estás sintiendo es muy importante y no tienes que enfrentarlo solo/a. " +
	"Si estás pensando en hacerte daño, por favor llama ahora al 911 o a la línea 171 (opción 6) " +
	"de salud mental, o acude a la emergencia más cercana. Si puedes, busca también a alguien de " +
	"confianza que te acompañe en este momento. Aquí sigo para conversar contigo."

// Match describes a positive crisis detection.
type Match struct {
	Indicator string
	Message   string
}

type indicator struct {
	regex *regexp.Regexp
	label string
}

// Detector matches user text against a fixed list of self-harm indicators.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	indicators []indicator
}

// NewDetector builds the detector with the built-in indicator list.
func NewDetector() *Detector {
	return &Detector{indicators: []indicator{
		{regexp.MustCompile(`(?i)\bsuicid`), "suicidio"},
		{regexp.MustCompile(`(?i)\b(ya\s+)?no\s+quiero\s+(seguir\s+)?(vivir|viviendo)\b`), "no quiero vivir"},
		{regexp.MustCompile(`(?i)\bno\s+quiero\s+(estar|seguir)\s+viv[oa]\b`), "no quiero estar vivo"},
		{regexp.MustCompile(`(?i)\b(me\s+)?quiero\s+morir(me)?\b`), "quiero morir"},
		{regexp.MustCompile(`(?i)\bmatarme\b`), "matarme"},
		{regexp.MustCompile(`(?i)\bme\s+(quiero|voy\s+a|gustaria)\s+matar\b`), "me quiero matar"},
		{regexp.MustCompile(`(?i)\bmejor\s+estaria\s+muert[oa]\b`), "mejor muerto"},
		{regexp.MustCompile(`(?i)\bquitarme\s+la\s+vida\b`), "quitarme la vida"},
		{regexp.MustCompile(`(?i)\b(hacerme|me\s+hago)\s+da[nñ]o\b`), "hacerme daño"},
		{regexp.MustCompile(`(?i)\bautolesi`), "autolesión"},
		{regexp.MustCompile(`(?i)\bcortarme\b`), "cortarme"},
		{regexp.MustCompile(`(?i)\bacabar\s+con\s+(todo|mi\s+vida)\b`), "acabar con todo"},
		{regexp.MustCompile(`(?i)\bno\s+vale\s+la\s+pena\s+vivir\b`), "no vale la pena vivir"},
		{regexp.MustCompile(`(?i)\b(desaparecer|dormir)\s+para\s+siempre\b`), "desaparecer para siempre"},
		{regexp.MustCompile(`(?i)\bquiero\s+desaparecer\b`), "quiero desaparecer"},
		{regexp.MustCompile(`(?i)\b(kill\s+myself|end\s+my\s+life|want\s+to\s+die|self[\s-]?harm)\b`), "english indicator"},
	}}
}

// Detect reports whether text contains a crisis indicator.
func (d *Detector) Detect(ctx context.Context, text string) (Match, bool) {
	_, span := crisisTracer.Start(ctx, "crisis.detect")
	defer span.End()

	normalized := normalize(text)
	if normalized == "" {
		return Match{}, false
	}
	for _, ind := range d.indicators {
		if ind.regex.MatchString(normalized) {
			span.SetAttributes(attribute.String("equilibra.crisis_indicator", ind.label))
			return Match{Indicator: ind.label, Message: SafetyMessage}, true
		}
	}
	return Match{}, false
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u",
)

// normalize folds accents and collapses whitespace so "Quitarme  la  VIDA"
// and "quitarme la vida" match alike. The ñ is kept.
func normalize(text string) string {
	text = accentReplacer.Replace(strings.TrimSpace(text))
	return strings.Join(strings.Fields(text), " ")
}
