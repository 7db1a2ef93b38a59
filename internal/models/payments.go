package models

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
)

type Donation struct {
	Amount        float64       `json:"amount"`
	DonorName     string        `json:"donorName"`
	DonorEmail    string        `json:"donorEmail"`
	Comment       string        `json:"comment,omitempty"`
	Status        PaymentStatus `json:"status,omitempty"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
}

// DonationCheckout asks the payment provider for a checkout session. Amount is in minor units.
type DonationCheckout struct {
	Amount     int64  `json:"amount"`
	DonorName  string `json:"donorName"`
	DonorEmail string `json:"donorEmail"`
}

// PrayerNote is a list of names submitted for commemoration, optionally paid.
type PrayerNote struct {
	Type   string        `json:"type"`
	Names  string        `json:"names"`
	IsPaid bool          `json:"isPaid"`
	Amount float64       `json:"amount"`
	Status PaymentStatus `json:"status,omitempty"`
}

// NoteCheckout asks the payment provider for a checkout session. Amount is in minor units.
type NoteCheckout struct {
	Amount int64  `json:"amount"`
	Type   string `json:"type"`
	Names  string `json:"names"`
}

type CheckoutSession struct {
	SessionID string `json:"sessionId"`
}

// MinorUnits converts an amount to the smallest currency unit expected by the payment provider.
func MinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
