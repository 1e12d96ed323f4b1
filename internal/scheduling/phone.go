package scheduling

import "strings"

const phoneDigits = 10

// DefaultPhonePrefix is the Ecuadorian mobile prefix.
const DefaultPhonePrefix = "09"

// ValidatePhone accepts exactly ten ASCII digits starting with prefix.
func ValidatePhone(phone, prefix string) error {
	if prefix == "" {
		prefix = DefaultPhonePrefix
	}
	phone = strings.TrimSpace(phone)
	if len(phone) != phoneDigits || !strings.HasPrefix(phone, prefix) {
		return invalid(RulePhone, "El teléfono debe tener 10 dígitos y comenzar con "+prefix+".")
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return invalid(RulePhone, "El teléfono solo puede contener números.")
		}
	}
	return nil
}
