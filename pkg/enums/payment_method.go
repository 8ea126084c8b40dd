package enums

import "strings"

// PaymentMethod is a free-text tender label such as cash or card.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodUPI  PaymentMethod = "upi"
)

func (m PaymentMethod) String() string {
	return string(m)
}

// NormalizePaymentMethod trims the input and falls back to cash when blank.
func NormalizePaymentMethod(value string) PaymentMethod {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return PaymentMethodCash
	}
	return PaymentMethod(trimmed)
}
