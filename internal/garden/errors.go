package garden

import (
	"errors"
	"fmt"
)

var (
	ErrItemLocked        = errors.New("item locked")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoneOwned         = errors.New("none owned")
	ErrNotFound          = errors.New("placed item not found")
	ErrUnknownItem       = errors.New("unknown catalog item")
	ErrInvalidPosition   = errors.New("position must be a finite number")
)

// LockedError indicates the player has not completed enough tasks for an item.
// It matches ErrItemLocked with errors.Is.
type LockedError struct {
	Item                ItemID
	RequiredCompletions int
	CurrentCompletions  int
}

func (e LockedError) Error() string {
	return fmt.Sprintf("item '%s' unlocks at %d completions (currently %d)", e.Item, e.RequiredCompletions, e.CurrentCompletions)
}

func (e LockedError) Is(target error) bool { return target == ErrItemLocked }

// FundsError indicates the balance does not cover an item's cost.
// It matches ErrInsufficientFunds with errors.Is.
type FundsError struct {
	Item    ItemID
	Cost    int
	Balance int
}

func (e FundsError) Error() string {
	return fmt.Sprintf("item '%s' costs %d (balance %d)", e.Item, e.Cost, e.Balance)
}

func (e FundsError) Is(target error) bool { return target == ErrInsufficientFunds }
