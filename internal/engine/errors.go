package engine

import (
	"errors"
	"fmt"
)

// GameError represents a hard failure of a requested operation: bad
// configuration, a rejected rule module, an out-of-range index, or a
// malformed interaction. Gameplay violations are not errors; they are
// Violation values resolved into penalties.
type GameError struct {
	// Code identifies the error category.
	Code GameErrorCode

	// Message is a human-readable description.
	Message string

	// Index and Length carry the offending index and the valid range
	// for out-of-range errors.
	Index  int
	Length int

	// Rule identifies the rule module involved, if any.
	Rule string
}

// GameErrorCode categorizes hard errors.
type GameErrorCode string

const (
	// ErrCodeInvalidConfig indicates unusable startup configuration.
	ErrCodeInvalidConfig GameErrorCode = "INVALID_CONFIG"

	// ErrCodeRuleLoad indicates rule modules were rejected at load time.
	// The message aggregates every rejected module, not just the first.
	ErrCodeRuleLoad GameErrorCode = "RULE_LOAD"

	// ErrCodeInvalidPlayerIndex indicates a player index out of range.
	ErrCodeInvalidPlayerIndex GameErrorCode = "INVALID_PLAYER_INDEX"

	// ErrCodeInvalidCardIndex indicates a hand position out of range.
	ErrCodeInvalidCardIndex GameErrorCode = "INVALID_CARD_INDEX"

	// ErrCodeInvalidStackIndex indicates a stack index out of range.
	ErrCodeInvalidStackIndex GameErrorCode = "INVALID_STACK_INDEX"

	// ErrCodeInvalidRuleIndex indicates a rule index out of range.
	ErrCodeInvalidRuleIndex GameErrorCode = "INVALID_RULE_INDEX"

	// ErrCodeRuleAlreadyActive indicates a double activation.
	ErrCodeRuleAlreadyActive GameErrorCode = "RULE_ALREADY_ACTIVE"

	// ErrCodeRuleNotActive indicates deactivating an inactive rule.
	ErrCodeRuleNotActive GameErrorCode = "RULE_NOT_ACTIVE"

	// ErrCodeMalformedInteraction indicates a token sequence that does
	// not match the leaf it claims to resolve, or a payload of the
	// wrong shape.
	ErrCodeMalformedInteraction GameErrorCode = "MALFORMED_INTERACTION"

	// ErrCodeBadChoice indicates an out-of-range disambiguation index.
	ErrCodeBadChoice GameErrorCode = "BAD_CHOICE"

	// ErrCodeDuplicatePath indicates inserting a leaf that already
	// exists under the same parent for the same rule.
	ErrCodeDuplicatePath GameErrorCode = "DUPLICATE_PATH"

	// ErrCodeNotEnoughCards indicates every drawable stack was
	// exhausted even after a refill.
	ErrCodeNotEnoughCards GameErrorCode = "NOT_ENOUGH_CARDS"

	// ErrCodeNoStack indicates no stack of the wanted kind exists.
	ErrCodeNoStack GameErrorCode = "NO_STACK"
)

// Error implements the error interface.
func (e *GameError) Error() string {
	if e.Length > 0 || e.Index > 0 {
		return fmt.Sprintf("%s: %s (index=%d, len=%d)", e.Code, e.Message, e.Index, e.Length)
	}
	if e.Rule != "" {
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.Rule)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the GameErrorCode from err, unwrapping as needed.
// Returns the empty code when err is not a GameError.
func CodeOf(err error) GameErrorCode {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsNotEnoughCards reports whether err is a drawable-exhaustion error.
func IsNotEnoughCards(err error) bool { return CodeOf(err) == ErrCodeNotEnoughCards }

// IsBadChoice reports whether err is an out-of-range disambiguation
// index.
func IsBadChoice(err error) bool { return CodeOf(err) == ErrCodeBadChoice }

// IsRuleLoad reports whether err aggregates rejected rule modules.
func IsRuleLoad(err error) bool { return CodeOf(err) == ErrCodeRuleLoad }

// NewInvalidPlayerIndex creates a GameError for a player index out of
// range.
func NewInvalidPlayerIndex(index, length int) *GameError {
	return &GameError{
		Code:    ErrCodeInvalidPlayerIndex,
		Message: "no player at index",
		Index:   index,
		Length:  length,
	}
}

// NewInvalidCardIndex creates a GameError for a hand position out of
// range.
func NewInvalidCardIndex(index, length int) *GameError {
	return &GameError{
		Code:    ErrCodeInvalidCardIndex,
		Message: "no card at index",
		Index:   index,
		Length:  length,
	}
}

// NewInvalidStackIndex creates a GameError for a stack index out of
// range.
func NewInvalidStackIndex(index, length int) *GameError {
	return &GameError{
		Code:    ErrCodeInvalidStackIndex,
		Message: "no stack at index",
		Index:   index,
		Length:  length,
	}
}

// NewInvalidRuleIndex creates a GameError for a rule index out of range.
func NewInvalidRuleIndex(index, length int) *GameError {
	return &GameError{
		Code:    ErrCodeInvalidRuleIndex,
		Message: "no rule at index",
		Index:   index,
		Length:  length,
	}
}

// NewNotEnoughCards creates a GameError for drawable exhaustion after a
// refill attempt.
func NewNotEnoughCards() *GameError {
	return &GameError{
		Code:    ErrCodeNotEnoughCards,
		Message: "every drawable stack is exhausted, even after refilling",
	}
}

// NewMalformedInteraction creates a GameError for an interaction that
// does not fit the automaton chain it claims to resolve.
func NewMalformedInteraction(msg string) *GameError {
	return &GameError{Code: ErrCodeMalformedInteraction, Message: msg}
}
