package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidID       = errors.New("order id must not be empty")
	ErrEmptyName       = errors.New("order name is required")
	ErrNegativeAmount  = errors.New("order amount must not be negative")
	ErrInvalidClaimant = errors.New("claimant must not be empty")
	ErrAlreadyClaimed  = errors.New("order already claimed")
	ErrClaimState      = errors.New("claimed flag and claimant disagree")
)

// ID identifies an order for the lifetime of the deployment.
type ID string

// MessageRef locates the rendered announcement of an order.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Order models a claimable order announcement.
type Order struct {
	ID        ID
	Name      string
	Amount    int64
	Claimed   bool
	ClaimedBy string
	Message   MessageRef
}

// AlreadyClaimedError reports a claim on an order someone else already holds.
type AlreadyClaimedError struct {
	OrderID   ID
	ClaimedBy string
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("order %s already claimed by %s", e.OrderID, e.ClaimedBy)
}

func (e *AlreadyClaimedError) Is(target error) bool {
	return target == ErrAlreadyClaimed
}

// NewOrder validates and constructs an unclaimed Order.
func NewOrder(id ID, name string, amount int64, ref MessageRef) (*Order, error) {
	order := &Order{
		ID:      id,
		Name:    strings.TrimSpace(name),
		Amount:  amount,
		Message: ref,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if strings.TrimSpace(string(o.ID)) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(o.Name) == "" {
		return ErrEmptyName
	}
	if o.Amount < 0 {
		return ErrNegativeAmount
	}
	if o.Claimed != (o.ClaimedBy != "") {
		return ErrClaimState
	}
	return nil
}

// Claim moves the order from unclaimed to claimed. The claimant is never reassigned.
func (o *Order) Claim(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return ErrInvalidClaimant
	}
	if o.Claimed {
		return &AlreadyClaimedError{OrderID: o.ID, ClaimedBy: o.ClaimedBy}
	}
	o.Claimed = true
	o.ClaimedBy = actor
	return nil
}

// Clone returns a detached copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}
