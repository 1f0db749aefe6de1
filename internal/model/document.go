package model

import "time"

// Printable documents. Each kind maps to the resource the id belongs to.
const (
	DocumentPatientRecord  = "patient-record"
	DocumentDiscountLetter = "discount-letter"
)

var DocumentKinds = map[string]string{
	DocumentPatientRecord:  "patients",
	DocumentDiscountLetter: "discount-requests",
}

type DocumentToken struct {
	PDFToken  string    `json:"pdf_token"`
	ExpiresAt time.Time `json:"expires_at"`
	URL       string    `json:"url"`
}
