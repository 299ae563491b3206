package service

import "errors"

// Checkout failure taxonomy. Every error returned by CheckoutService wraps one of these.
var (
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrGateway            = errors.New("payment gateway error")
	ErrSignatureInvalid   = errors.New("payment signature invalid")
	ErrIncompleteCallback = errors.New("incomplete payment callback")
	ErrOrderMismatch      = errors.New("payment does not match checkout order")
	ErrInternal           = errors.New("internal checkout error")
)

const (
	msgInvalidPlan        = "Please choose a valid subscription plan."
	msgGateway            = "We could not start your payment. Please try again."
	msgIncompleteCallback = "Invalid payment details received."
	msgVerification       = "Payment verification failed. Please contact support."
	msgInternal           = "An error occurred while processing your payment. Please try again."
)

// UserMessage maps a checkout error to the text shown to the user. It never
// includes the underlying cause.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPlan):
		return msgInvalidPlan
	case errors.Is(err, ErrGateway):
		return msgGateway
	case errors.Is(err, ErrIncompleteCallback):
		return msgIncompleteCallback
	case errors.Is(err, ErrSignatureInvalid), errors.Is(err, ErrOrderMismatch):
		return msgVerification
	default:
		return msgInternal
	}
}

// outcome is the metrics label for a checkout result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidPlan):
		return "invalid_plan"
	case errors.Is(err, ErrGateway):
		return "gateway_error"
	case errors.Is(err, ErrIncompleteCallback):
		return "incomplete_callback"
	case errors.Is(err, ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrOrderMismatch):
		return "order_mismatch"
	default:
		return "internal_error"
	}
}
