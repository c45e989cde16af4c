package mail

import (
	"fmt"
	"time"
)

const (
	SubjectVerifyEmail  = "Confirm your email"
	SubjectRecoveryCode = "Password recovery code"
	SubjectNewBooking   = "New booking"
)

// VerificationCode is mailed after sign up and on resend.
func VerificationCode(to, code string) Message {
	return Message{
		To:      []string{to},
		Subject: SubjectVerifyEmail,
		Body:    fmt.Sprintf("Your code: %s", code),
	}
}

// RecoveryCode is mailed when a user asks to reset the password.
func RecoveryCode(to, code string, validFor time.Duration) Message {
	return Message{
		To:      []string{to},
		Subject: SubjectRecoveryCode,
		Body: fmt.Sprintf("Your password recovery code: %s\nThe code is valid for %d minutes.",
			code, int(validFor.Minutes())),
	}
}

// BookingNotice tells a supplier that a customer booked one of their prices.
type BookingNotice struct {
	SupplierEmail string
	CustomerName  string
	ServiceTitle  string
	PriceNames    []string
	At            time.Time
	Description   string
}

// NewBooking renders the supplier notification.
func NewBooking(n BookingNotice) Message {
	body := fmt.Sprintf("%s booked %q (%v) for %s.",
		n.CustomerName, n.ServiceTitle, n.PriceNames, n.At.Format("02.01.2006 15:04"))
	if n.Description != "" {
		body += "\nComment: " + n.Description
	}
	return Message{
		To:      []string{n.SupplierEmail},
		Subject: SubjectNewBooking,
		Body:    body,
	}
}
