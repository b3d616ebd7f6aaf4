package models

import "time"

type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "Cash"
	PaymentMethodBankTransfer  PaymentMethod = "Bank Transfer"
	PaymentMethodMobilePayment PaymentMethod = "Mobile Payment"
	PaymentMethodCreditCard    PaymentMethod = "Credit Card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodMobilePayment, PaymentMethodCreditCard:
		return true
	}
	return false
}

type PaymentTiming string

const (
	PaymentTimingNow   PaymentTiming = "Pay Now"
	PaymentTimingLater PaymentTiming = "Pay Later"
)

func (t PaymentTiming) Valid() bool {
	return t == PaymentTimingNow || t == PaymentTimingLater
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// CanTransition reports whether a payment may move from s to next.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	return s == PaymentStatusPending && (next == PaymentStatusCompleted || next == PaymentStatusFailed)
}

type Payment struct {
	ID        string
	Amount    float64
	Method    PaymentMethod
	Timing    PaymentTiming
	Reference ImageRef
	Status    PaymentStatus
	CreatedAt time.Time
}
