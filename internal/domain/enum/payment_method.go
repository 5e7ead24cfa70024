package enum

import "strings"

// PaymentMethod is the tender used for a sale. The set is open: terminals may
// send other labels, the three below are the ones the register UI offers.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "Bargeld"
	PaymentCard        PaymentMethod = "Karte"
	PaymentContactless PaymentMethod = "Kontaktlos"
)

// KnownPaymentMethods returns the methods offered by the register UI
func KnownPaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCash, PaymentCard, PaymentContactless}
}

// IsCash reports whether change has to be handed out for this method
func (p PaymentMethod) IsCash() bool {
	return p == PaymentCash
}

// Normalize trims surrounding whitespace
func (p PaymentMethod) Normalize() PaymentMethod {
	return PaymentMethod(strings.TrimSpace(string(p)))
}

func (p PaymentMethod) String() string {
	return string(p)
}
