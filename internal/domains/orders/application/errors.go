package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrForbidden signals the actor may not run the operation.
	ErrForbidden = errors.New("only the owner can create orders")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNegativeAmount) ||
		errors.Is(err, domain.ErrInvalidID) ||
		errors.Is(err, domain.ErrInvalidClaimant) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
