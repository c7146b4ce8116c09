package engine

import (
	"github.com/roach88/mao/internal/event"
)

// PenaltyHook is a rule-supplied replacement for the default penalty.
type PenaltyHook func(g *Game, player int) error

// TurnHook mutates turn state on behalf of a rule, either instead of
// the default advance (OverrideBasicRule) or around it.
type TurnHook func(g *Game, player int) error

// CrossRuleCallback runs after every activated rule has answered an
// occurrence. It sees the occurrence and the deferred verdict kinds
// collected in the first pass, and may contribute another verdict; only
// deferred kinds it returns are kept.
type CrossRuleCallback func(g *Game, occ event.Occurrence, deferred []VerdictKind) (Verdict, error)

// Verdict is a rule module's answer to an occurrence: a kind, plus an
// optional cross-rule callback for the second pass.
type Verdict struct {
	Kind     VerdictKind
	Callback CrossRuleCallback
}

// Ignore is the verdict of a rule with no opinion.
func Ignore() Verdict { return Verdict{Kind: Ignored{}} }

// VerdictKind is a sealed union of the ways a rule can answer.
type VerdictKind interface {
	verdictKind()
}

// Ignored means the rule has no opinion on the occurrence.
type Ignored struct{}

func (Ignored) verdictKind() {}

// Disallow rejects the action. The player is penalized with the rule's
// own hook, or the default draw-one penalty when Penalty is nil.
type Disallow struct {
	Rule    string
	Message string
	Penalty PenaltyHook
}

func (Disallow) verdictKind() {}

// ForgotSomething flags an obligation the player missed. Penalized the
// same way as Disallow.
type ForgotSomething struct {
	Rule    string
	Message string
	Penalty PenaltyHook
}

func (ForgotSomething) verdictKind() {}

// OverrideBasicRule suppresses the default turn advance; the hook makes
// whatever turn change the rule wants instead.
type OverrideBasicRule struct {
	Hook TurnHook
}

func (OverrideBasicRule) verdictKind() {}

// ExecuteBeforeTurnChange runs its hook before the default advance.
type ExecuteBeforeTurnChange struct {
	Hook TurnHook
}

func (ExecuteBeforeTurnChange) verdictKind() {}

// ExecuteAfterTurnChange runs its hook after the default advance.
type ExecuteAfterTurnChange struct {
	Hook TurnHook
}

func (ExecuteAfterTurnChange) verdictKind() {}

// ViolationKind distinguishes the two player-facing wrongdoings.
type ViolationKind string

const (
	// ViolationDisallowed marks an action a rule rejected.
	ViolationDisallowed ViolationKind = "disallowed"

	// ViolationForgot marks an obligation the player missed.
	ViolationForgot ViolationKind = "forgot"
)

// Violation is a player-facing wrongdoing. Violations never abort an
// operation; the engine always resolves them into a penalty.
type Violation struct {
	Kind    ViolationKind
	Rule    string
	Message string

	// Player is the seat that was penalized for it.
	Player int

	penalty PenaltyHook
}

func (v Violation) String() string {
	return v.Rule + ": " + v.Message
}
