package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

var (
	ErrInvalidStatus       = errors.New("order status is invalid")
	ErrInvalidTransition   = errors.New("order status transition is not allowed")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrIncompleteShipping  = errors.New("shipping details are incomplete")
	ErrMismatchedTotal     = errors.New("order total does not match its lines")
	ErrNoLines             = errors.New("order must carry at least one line")
)

// transitions encodes the allowed status state machine. DELIVERED and
// CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// IsValid reports whether the status is a known state.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine permits moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingDetails are the contact and address fields supplied at checkout.
type ShippingDetails struct {
	CustomerName  string
	CustomerEmail string
	AddressLine   string
	City          string
	ZipCode       string
}

// Validate rejects empty fields. Format validation beyond presence is an
// upstream concern; email gets the same minimal check the rest of the
// system applies.
func (d ShippingDetails) Validate() error {
	for _, field := range []string{d.CustomerName, d.CustomerEmail, d.AddressLine, d.City, d.ZipCode} {
		if strings.TrimSpace(field) == "" {
			return ErrIncompleteShipping
		}
	}
	if !strings.Contains(d.CustomerEmail, "@") {
		return ErrIncompleteShipping
	}
	return nil
}

// CartLine is a client-supplied, untrusted request line. It carries no price:
// pricing is always resolved server-side.
type CartLine struct {
	VariantID string
	Quantity  int64
}

// Validate enforces a positive quantity and a present variant reference.
func (l CartLine) Validate() error {
	if strings.TrimSpace(l.VariantID) == "" {
		return ErrInvalidQuantity
	}
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// OrderLine is a persisted child of an Order. Price is the variant's price at
// placement time and never changes afterwards.
type OrderLine struct {
	VariantID string
	Quantity  int64
	Price     int64
}

// Order models a committed purchase. Total is computed from the lines at
// creation time and is immutable thereafter.
type Order struct {
	ID        string
	UserID    *string
	Shipping  ShippingDetails
	Lines     []OrderLine
	Total     int64
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder validates and constructs an order in the PENDING state, deriving
// the total from the lines with exact integer arithmetic.
func NewOrder(userID *string, shipping ShippingDetails, lines []OrderLine) (*Order, error) {
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	var total int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		total += line.Price * line.Quantity
	}
	return &Order{
		ID:       uuid.NewString(),
		UserID:   userID,
		Shipping: shipping,
		Lines:    append([]OrderLine{}, lines...),
		Total:    total,
		Status:   StatusPending,
	}, nil
}

// Validate re-applies core invariants for persistence.
func (o *Order) Validate() error {
	if err := o.Shipping.Validate(); err != nil {
		return err
	}
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	if !o.Status.IsValid() {
		return ErrInvalidStatus
	}
	var total int64
	for _, line := range o.Lines {
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		total += line.Price * line.Quantity
	}
	if total != o.Total {
		return ErrMismatchedTotal
	}
	return nil
}

// Transition moves the order to next, enforcing the state machine.
func (o *Order) Transition(next Status) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if !o.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.Status = next
	return nil
}
