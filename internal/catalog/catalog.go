// Package catalog holds the fixed symptom list and the canned replies the
// dialogue falls back to. It is a lookup table with no behavior of its own
// beyond keyword matching.
package catalog

import (
	"strings"
	"unicode"
)

var symptoms = []string{
	"Ansiedad", "Tristeza", "Estrés", "Soledad", "Miedo", "Culpa", "Inseguridad",
	"Enojo", "Agotamiento emocional", "Falta de motivación", "Problemas de sueño",
	"Dolor corporal", "Preocupación excesiva", "Cambios de humor", "Apatía",
	"Sensación de vacío", "Pensamientos negativos", "Llanto frecuente",
	"Dificultad para concentrarse", "Desesperanza", "Tensión muscular",
	"Taquicardia", "Dificultad para respirar", "Problemas de alimentación",
	"Pensamientos intrusivos", "Problemas familiares", "Problemas de pareja",
}

type symptomKeywords struct {
	symptom  string
	keywords []string
}

// Order matters: the first symptom whose keyword appears wins. Keywords match
// whole words, so "ira" does not fire inside "respirar".
var keywordIndex = []symptomKeywords{
	{"Problemas de pareja", []string{"pareja", "novio", "novia", "esposo", "esposa", "relación", "matrimonio"}},
	{"Problemas familiares", []string{"familia", "padres", "hermanos", "casa", "hogar", "papá", "mamá"}},
	{"Ansiedad", []string{"ansiedad", "nervios", "angustia", "pánico"}},
	{"Tristeza", []string{"tristeza", "deprimido", "desanimado", "desesperanzado"}},
	{"Estrés", []string{"estrés", "presión", "agobiado", "tensión"}},
	{"Soledad", []string{"solo", "soledad", "aislado", "incomprendido"}},
	{"Miedo", []string{"miedo", "temor", "aterrado"}},
	{"Culpa", []string{"culpa", "arrepentido", "remordimiento"}},
	{"Inseguridad", []string{"inseguro", "duda", "incertidumbre"}},
	{"Enojo", []string{"enojo", "ira", "enfado", "rabia"}},
	{"Agotamiento emocional", []string{"agotado", "cansancio emocional", "quemado"}},
	{"Falta de motivación", []string{"desmotivado", "sin ganas"}},
	{"Problemas de sueño", []string{"insomnio", "no duermo", "sueño interrumpido"}},
	{"Dolor corporal", []string{"dolor", "molestia"}},
	{"Preocupación excesiva", []string{"preocupación", "obsesión", "rumiación"}},
	{"Cambios de humor", []string{"altibajos", "cambios de ánimo", "volátil"}},
	{"Apatía", []string{"apatía", "indiferencia", "desinterés"}},
	{"Sensación de vacío", []string{"vacío", "hueco", "sin sentido"}},
	{"Pensamientos negativos", []string{"negatividad", "pesimismo", "derrotista"}},
	{"Llanto frecuente", []string{"llorar", "llanto", "lágrimas"}},
	{"Dificultad para concentrarse", []string{"concentración", "distracción", "enfoque"}},
	{"Desesperanza", []string{"desesperanza", "sin futuro"}},
	{"Tensión muscular", []string{"rigidez", "contractura"}},
	{"Taquicardia", []string{"taquicardia", "corazón acelerado", "palpitaciones"}},
	{"Dificultad para respirar", []string{"falta de aire", "disnea", "ahogo"}},
	{"Problemas de alimentación", []string{"comer", "alimentación", "dieta"}},
	{"Pensamientos intrusivos", []string{"intrusivos", "pensamientos no deseados", "obsesivos"}},
}

var genericPrompts = []string{
	"Gracias por contarme esto. ¿Cómo te sientes al hablarlo ahora?",
	"Te escucho. ¿Qué es lo que más te pesa en este momento?",
	"Lo que sientes es válido. ¿Quieres contarme un poco más?",
	"Estoy aquí para acompañarte. ¿Qué te ayudaría a sentirte un poco mejor hoy?",
	"Es valiente hablar de lo que te pasa. ¿Desde cuándo lo notas con más fuerza?",
}

// Symptoms returns the selectable symptoms in display order.
func Symptoms() []string {
	out := make([]string, len(symptoms))
	copy(out, symptoms)
	return out
}

// Canonical resolves a user supplied symptom name, ignoring case and surrounding
// whitespace, to its catalog spelling.
func Canonical(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, s := range symptoms {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}

// Replies returns the canned replies for a symptom, or nil when unknown.
func Replies(symptom string) []string {
	replies, ok := replyTable[symptom]
	if !ok {
		return nil
	}
	out := make([]string, len(replies))
	copy(out, replies)
	return out
}

// DetectSymptom returns the first symptom whose keywords appear in text as
// whole words, ignoring case and accents.
func DetectSymptom(text string) (string, bool) {
	padded := " " + strings.Join(foldWords(text), " ") + " "
	if strings.TrimSpace(padded) == "" {
		return "", false
	}
	for _, entry := range keywordIndex {
		for _, kw := range entry.keywords {
			if strings.Contains(padded, " "+strings.Join(foldWords(kw), " ")+" ") {
				return entry.symptom, true
			}
		}
	}
	return "", false
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u",
)

// foldWords lowercases, strips accents and splits on anything that is not a
// letter or digit.
func foldWords(text string) []string {
	folded := strings.ToLower(accentFolder.Replace(text))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// GenericPrompts returns the symptom independent empathetic prompts.
func GenericPrompts() []string {
	out := make([]string, len(genericPrompts))
	copy(out, genericPrompts)
	return out
}
