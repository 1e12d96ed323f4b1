package dialogue

import "testing"

func TestKeywordIntent(t *testing.T) {
	policy := NewKeywordIntent()
	yes := []string{
		"Quiero agendar una cita",
		"¿Puedo CONSULTAR con alguien?",
		"necesito un psicólogo",
		"me gustaría ver a la psicologa",
		"hablar con un doctor.",
	}
	for _, text := range yes {
		if !policy.WantsAppointment(text) {
			t.Fatalf("expected intent for %q", text)
		}
	}
	no := []string{"", "me siento solo", "citas de libros me ayudan", "doctorado"}
	for _, text := range no {
		if policy.WantsAppointment(text) {
			t.Fatalf("unexpected intent for %q", text)
		}
	}
}

func TestExplicitOnly(t *testing.T) {
	if (ExplicitOnly{}).WantsAppointment("quiero una cita") {
		t.Fatal("explicit-only policy must not infer intent")
	}
}

func TestIsAffirmative(t *testing.T) {
	for _, text := range []string{"sí", "Si", "¡Claro!", "ok", "dale", "Por supuesto", "de acuerdo.", "yes", "sí, por favor"} {
		if !IsAffirmative(text) {
			t.Fatalf("expected %q to be affirmative", text)
		}
	}
	for _, text := range []string{"", "no", "tal vez", "si pero luego", "nose"} {
		if IsAffirmative(text) {
			t.Fatalf("expected %q to be rejected", text)
		}
	}
}
