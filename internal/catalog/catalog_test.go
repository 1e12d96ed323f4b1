package catalog

import "testing"

func TestEverySymptomHasReplies(t *testing.T) {
	for _, s := range Symptoms() {
		if len(Replies(s)) == 0 {
			t.Errorf("symptom %q has no canned replies", s)
		}
	}
}

func TestCanonical(t *testing.T) {
	got, ok := Canonical("  ansiedad ")
	if !ok || got != "Ansiedad" {
		t.Fatalf("Canonical(ansiedad) = %q, %v", got, ok)
	}
	if _, ok := Canonical("Aburrimiento"); ok {
		t.Fatal("expected unknown symptom to be rejected")
	}
}

func TestDetectSymptom(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"Discutí otra vez con mi novia", "Problemas de pareja", true},
		{"Siento mucha ANGUSTIA en el pecho", "Ansiedad", true},
		{"no duermo desde hace días", "Problemas de sueño", true},
		{"hoy fue un día normal", "", false},
		{"me cuesta respirar", "", false},
		{"mira, estoy casado hace poco", "", false},
		{"siento IRA todo el tiempo", "Enojo", true},
		{"tengo falta  de aire", "Dificultad para respirar", true},
		{"me siento con mucha presion", "Estrés", true},
		{"   ", "", false},
	}
	for _, tt := range tests {
		got, ok := DetectSymptom(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DetectSymptom(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRepliesReturnsCopy(t *testing.T) {
	r := Replies("Ansiedad")
	r[0] = "mutated"
	if Replies("Ansiedad")[0] == "mutated" {
		t.Fatal("Replies must not expose the backing table")
	}
}
