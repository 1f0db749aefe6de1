package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountStatus string

const (
	DiscountStatusPending  DiscountStatus = "pending"
	DiscountStatusApproved DiscountStatus = "approved"
	DiscountStatusRejected DiscountStatus = "rejected"
)

// DiscountRequest is a price reduction a clinician asks an administrator to
// approve for a patient.
type DiscountRequest struct {
	Base
	PatientID       int64           `json:"patient_id" db:"patient_id"`
	PatientName     string          `json:"patient_name" db:"patient_name"`
	ProductID       *int64          `json:"product_id" db:"product_id"`
	Percentage      decimal.Decimal `json:"percentage" db:"percentage"`
	Reason          string          `json:"reason" db:"reason"`
	RequestedBy     string          `json:"requested_by" db:"requested_by"`
	Status          DiscountStatus  `json:"status" db:"status"`
	RejectionReason *string         `json:"rejection_reason" db:"rejection_reason"`
	DecidedBy       *string         `json:"decided_by" db:"decided_by"`
	DecidedAt       *time.Time      `json:"decided_at" db:"decided_at"`
}

type DiscountRequestInput struct {
	PatientID  int64           `json:"patient_id" validate:"required,gt=0"`
	ProductID  *int64          `json:"product_id" validate:"omitempty,gt=0"`
	Percentage decimal.Decimal `json:"percentage"`
	Reason     string          `json:"reason" validate:"required,max=500"`
}

// PercentageErrors reports a percentage outside (0, 100].
func (in DiscountRequestInput) PercentageErrors() map[string][]string {
	if !in.Percentage.IsPositive() || in.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return map[string][]string{"percentage": {"The percentage must be between 0 and 100."}}
	}
	return nil
}

func (in DiscountRequestInput) RuleErrors() map[string][]string { return in.PercentageErrors() }

type RejectDiscountInput struct {
	RejectionReason string `json:"rejection_reason" validate:"required,max=500"`
}

// DiscountDecision is the payload of the approve/reject outbox events.
type DiscountDecision struct {
	ID              int64          `json:"id"`
	Status          DiscountStatus `json:"status"`
	RequestedBy     string         `json:"requested_by"`
	PatientName     string         `json:"patient_name"`
	Percentage      string         `json:"percentage"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	DecidedBy       string         `json:"decided_by"`
}
