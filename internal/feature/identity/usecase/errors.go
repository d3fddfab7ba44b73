// Package usecase implements ticker resolution and symbol identity management.
package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrSymbolNotFound is returned when no symbol matches the ticker or ID.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrExchangeNotFound is returned when no exchange matches the code.
	ErrExchangeNotFound = errors.New("exchange not found")
	// ErrDuplicate is returned by the repository when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("duplicate key")
	// ErrInvalidTicker is returned when the ticker is blank.
	ErrInvalidTicker = errors.New("ticker is empty")
)

// Stages at which identity creation can fail.
const (
	StageValidate = "validate"
	StageLookup   = "lookup"
	StageExchange = "exchange"
	StageSymbol   = "symbol"
)

// IdentityCreationError reports that an exchange or symbol could not be created
// for a reason other than a lost create race.
type IdentityCreationError struct {
	Ticker string
	Stage  string
	Err    error
}

func (e *IdentityCreationError) Error() string {
	return fmt.Sprintf("identity for %q failed at %s: %v", e.Ticker, e.Stage, e.Err)
}

func (e *IdentityCreationError) Unwrap() error { return e.Err }

// UserMessage returns a short message suitable for showing to the user who added the holding.
func (e *IdentityCreationError) UserMessage() string {
	switch e.Stage {
	case StageValidate:
		return "Please enter a ticker symbol."
	case StageExchange:
		return fmt.Sprintf("Could not register the exchange for %s. Try selecting the exchange manually.", e.Ticker)
	case StageSymbol:
		return fmt.Sprintf("Could not register %s. Please try again later.", e.Ticker)
	default:
		return fmt.Sprintf("Could not look up %s. Please try again later.", e.Ticker)
	}
}
