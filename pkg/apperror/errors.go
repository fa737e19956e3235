package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so callers can branch on the outcome
// without matching on codes or messages.
type Kind string

const (
	KindInvalidTransition      Kind = "invalid_transition"
	KindAlreadyProcessed       Kind = "already_processed"
	KindExternalLedgerFailure  Kind = "external_ledger_failure"
	KindResourceLocked         Kind = "resource_locked"
	KindInsufficientFunds      Kind = "insufficient_funds"
	KindInvalidAmount          Kind = "invalid_amount"
	KindReconciliationRequired Kind = "reconciliation_required"
	KindNotFound               Kind = "not_found"
	KindForbidden              Kind = "forbidden"
	KindValidation             Kind = "validation"
	KindRateLimited            Kind = "rate_limited"
	KindUnauthorized           Kind = "unauthorized"
	KindInternal               Kind = "internal"
)

// Retryable reports whether the caller may re-issue the same request later.
func (k Kind) Retryable() bool {
	return k == KindExternalLedgerFailure || k == KindResourceLocked || k == KindRateLimited
}

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError by code, so errors.Is works against the constructors below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, kind Kind, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Kind:       kind,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, kind Kind, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Kind:       kind,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// KindOf returns the Kind of err, or KindInternal for errors that are not AppErrors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ---- Settlement state machine (ESC) ----

func ErrInvalidTransition(op string, from string) *AppError {
	return New("ESC_001", KindInvalidTransition,
		fmt.Sprintf("%s is not allowed while order is %s", op, from), http.StatusConflict)
}

func ErrAlreadyProcessed(message string) *AppError {
	return New("ESC_002", KindAlreadyProcessed, message, http.StatusConflict)
}

func ErrEscrowSettled(escrowStatus string) *AppError {
	return New("ESC_003", KindAlreadyProcessed,
		fmt.Sprintf("escrow already %s", escrowStatus), http.StatusConflict)
}

func ErrMissingProcessorRef(ref string) *AppError {
	return New("ESC_004", KindInvalidTransition,
		fmt.Sprintf("order has no %s", ref), http.StatusConflict)
}

func ErrInspectionWindowOpen() *AppError {
	return New("ESC_005", KindInvalidTransition, "inspection window has not expired", http.StatusConflict)
}

// ---- Disputes (DSP) ----

func ErrDisputeExists() *AppError {
	return New("DSP_001", KindInvalidTransition, "an unresolved dispute already exists for this order", http.StatusConflict)
}

func ErrDisputeNotOpen(status string) *AppError {
	return New("DSP_002", KindInvalidTransition,
		fmt.Sprintf("dispute is %s", status), http.StatusConflict)
}

func ErrDisputeAlreadyResolved() *AppError {
	return New("DSP_003", KindAlreadyProcessed, "dispute already resolved", http.StatusConflict)
}

// ---- Ledger / processor (LDG) ----

func ErrExternalLedger(op string, err error) *AppError {
	return Wrap("LDG_001", KindExternalLedgerFailure,
		fmt.Sprintf("payment processor %s failed, safe to retry", op), http.StatusBadGateway, err)
}

// ---- Wallet (WAL) ----

func ErrWalletBusy() *AppError {
	return New("WAL_001", KindResourceLocked, "wallet busy with a payout, retry later", http.StatusLocked)
}

func ErrInsufficientFunds() *AppError {
	return New("WAL_002", KindInsufficientFunds, "insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_003", KindInvalidAmount, "invalid amount", http.StatusBadRequest)
}

// ---- Reconciliation (REC) ----

func ErrReconciliationRequired(caseID string, err error) *AppError {
	return Wrap("REC_001", KindReconciliationRequired,
		fmt.Sprintf("processor and local records diverged, flagged for review (case %s)", caseID),
		http.StatusInternalServerError, err)
}

// ---- Access (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", KindUnauthorized, "invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden(message string) *AppError {
	return New("AUTH_002", KindForbidden, message, http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", KindRateLimited, "rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrNotFound(entity string) *AppError {
	return New("SYS_004", KindNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", KindInternal, "internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", KindInternal, "internal server error", http.StatusInternalServerError, err)
}

// Validation returns a validation error.
func Validation(message string) *AppError {
	return New("SYS_002", KindValidation, message, http.StatusBadRequest)
}
