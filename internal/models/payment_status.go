package models

import (
	"fmt"
	"strings"
)

// PaymentStatus is the closed set of booking payment states. Source data
// carries free-text statuses in both English and Hebrew; everything is
// normalized through ParsePaymentStatus at the ingestion boundary so the
// engine never matches on raw strings.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentCanceled PaymentStatus = "canceled"
)

// statusSynonyms maps raw status spellings to the canonical status.
var statusSynonyms = map[string]PaymentStatus{
	"pending":   PaymentPending,
	"unpaid":    PaymentPending,
	"ממתין":     PaymentPending,
	"לא שולם":   PaymentPending,
	"partial":   PaymentPartial,
	"מקדמה":     PaymentPartial,
	"שולם חלקית": PaymentPartial,
	"paid":      PaymentPaid,
	"שולם":      PaymentPaid,
	"canceled":  PaymentCanceled,
	"cancelled": PaymentCanceled,
	"מבוטל":     PaymentCanceled,
	"בוטל":      PaymentCanceled,
}

// ParsePaymentStatus normalizes a raw status string.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	s, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown payment status %q", raw)
	}
	return s, nil
}

// Valid reports whether s is one of the canonical statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentCanceled:
		return true
	}
	return false
}
