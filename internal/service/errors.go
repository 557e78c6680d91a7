package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain errors surfaced to callers. Handlers map each kind to a distinct
// HTTP status and message; none of them is fatal to the process.
var (
	// Till state machine
	ErrTillAlreadyOpen = errors.New("a till is already open")
	ErrNoSuchTill      = errors.New("till not found")
	ErrTillNotOpen     = errors.New("till is not open")
	ErrNoOpenTill      = errors.New("no open till")

	// Validation
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidDiscount = errors.New("discount cannot exceed the sale subtotal")
	ErrEmptySale       = errors.New("sale has no line items")

	ErrNoSuchProduct  = errors.New("product not found")
	ErrNoSuchCustomer = errors.New("customer not found")
	ErrNoSuchSale     = errors.New("sale not found")
	ErrSaleVoided     = errors.New("sale is already voided")

	// Auth
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNoSuchUser         = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
)

// InsufficientStockError aborts a sale when a line item asks for more units
// than the product has on hand. It carries enough detail for the register UI
// to tell the cashier which product is short.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested",
		e.Name, e.Available, e.Requested)
}

// PersistenceError wraps storage/transaction failures. The enclosing
// operation has already been rolled back when one of these is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
