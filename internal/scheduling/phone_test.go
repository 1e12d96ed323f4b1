package scheduling

import "testing"

func TestValidatePhone(t *testing.T) {
	valid := []string{"0991234567", " 0987654321 "}
	for _, p := range valid {
		if err := ValidatePhone(p, "09"); err != nil {
			t.Fatalf("expected %q to be valid: %v", p, err)
		}
	}

	invalid := []string{"", "099123456", "09912345678", "1991234567", "0891234567", "09912a4567", "+593991234567", "099 123 456"}
	for _, p := range invalid {
		err := ValidatePhone(p, "09")
		if err == nil {
			t.Fatalf("expected %q to be rejected", p)
		}
		verr, ok := err.(*ValidationError)
		if !ok || verr.Rule != RulePhone {
			t.Fatalf("expected phone rule for %q, got %v", p, err)
		}
	}
}

func TestValidatePhone_DefaultPrefix(t *testing.T) {
	if err := ValidatePhone("0991234567", ""); err != nil {
		t.Fatalf("expected default prefix to accept: %v", err)
	}
}
