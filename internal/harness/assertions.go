package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/mao/internal/engine"
)

// AssertionError is a failed table check with enough context to read
// the failure without re-running the scenario.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual:   %s\n", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nflow so far:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s player %d", event.Step, event.Action, event.Player)
			if event.Detail != "" {
				fmt.Fprintf(&buf, " (%s)", event.Detail)
			}
			for _, v := range event.Violations {
				fmt.Fprintf(&buf, "\n      ! %s", v)
			}
			fmt.Fprintln(&buf)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and the
// final table. All assertions run; the returned messages cover every
// failure, not just the first.
func EvaluateAssertions(result *Result, assertions []Assertion, g *engine.Game) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertViolationCount:
			err = assertViolationCount(result, a)
		case AssertViolationContains:
			err = assertViolationContains(result, a)
		case AssertCurrentPlayer:
			err = assertCurrentPlayer(result, g, a)
		case AssertDirection:
			err = assertDirection(result, g, a)
		case AssertHandSize:
			err = assertHandSize(result, g, a)
		case AssertTopCard:
			err = assertTopCard(result, g, a)
		case AssertLogLength:
			err = assertLogLength(result, g, a)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func assertViolationCount(result *Result, a Assertion) error {
	if len(result.Violations) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertViolationCount,
		Expected: fmt.Sprintf("%d violations", a.Count),
		Actual:   fmt.Sprintf("%d violations", len(result.Violations)),
		Trace:    result.Trace,
	}
}

// assertViolationContains passes when some violation carries the
// message substring, and matches the rule and player when given.
func assertViolationContains(result *Result, a Assertion) error {
	for _, v := range result.Violations {
		if !strings.Contains(v.Message, a.Message) {
			continue
		}
		if a.Rule != "" && v.Rule != a.Rule {
			continue
		}
		if a.Player != nil && v.Player != *a.Player {
			continue
		}
		return nil
	}

	want := fmt.Sprintf("a violation containing %q", a.Message)
	if a.Rule != "" {
		want += fmt.Sprintf(" from rule %q", a.Rule)
	}
	if a.Player != nil {
		want += fmt.Sprintf(" against player %d", *a.Player)
	}
	return &AssertionError{
		Type:     AssertViolationContains,
		Expected: want,
		Actual:   fmt.Sprintf("%d violations, none matching", len(result.Violations)),
		Trace:    result.Trace,
	}
}

func assertCurrentPlayer(result *Result, g *engine.Game, a Assertion) error {
	if g.CurrentPlayer() == *a.Player {
		return nil
	}
	return &AssertionError{
		Type:     AssertCurrentPlayer,
		Expected: fmt.Sprintf("player %d to act", *a.Player),
		Actual:   fmt.Sprintf("player %d to act", g.CurrentPlayer()),
		Trace:    result.Trace,
	}
}

func assertDirection(result *Result, g *engine.Game, a Assertion) error {
	if g.Direction() == a.Value {
		return nil
	}
	return &AssertionError{
		Type:     AssertDirection,
		Expected: fmt.Sprintf("direction %d", a.Value),
		Actual:   fmt.Sprintf("direction %d", g.Direction()),
		Trace:    result.Trace,
	}
}

func assertHandSize(result *Result, g *engine.Game, a Assertion) error {
	p, err := g.Player(*a.Player)
	if err != nil {
		return &AssertionError{
			Type:     AssertHandSize,
			Expected: fmt.Sprintf("player %d at the table", *a.Player),
			Actual:   err.Error(),
			Trace:    result.Trace,
		}
	}
	if p.HandLen() == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertHandSize,
		Expected: fmt.Sprintf("player %d holding %d cards", *a.Player, a.Count),
		Actual:   fmt.Sprintf("holding %d", p.HandLen()),
		Trace:    result.Trace,
	}
}

// assertTopCard checks the label on top of a stack. Without a stack
// index it checks the opening playable stack.
func assertTopCard(result *Result, g *engine.Game, a Assertion) error {
	stackIndex := 1
	if a.Stack != nil {
		stackIndex = *a.Stack
	}
	st, err := g.Stack(stackIndex)
	if err != nil {
		return &AssertionError{
			Type:     AssertTopCard,
			Expected: fmt.Sprintf("stack %d on the table", stackIndex),
			Actual:   err.Error(),
			Trace:    result.Trace,
		}
	}
	top, ok := st.Top()
	if !ok {
		return &AssertionError{
			Type:     AssertTopCard,
			Expected: fmt.Sprintf("%s on top of stack %d", a.Card, stackIndex),
			Actual:   "stack is empty",
			Trace:    result.Trace,
		}
	}
	if top.String() == a.Card {
		return nil
	}
	return &AssertionError{
		Type:     AssertTopCard,
		Expected: fmt.Sprintf("%s on top of stack %d", a.Card, stackIndex),
		Actual:   top.String(),
		Trace:    result.Trace,
	}
}

func assertLogLength(result *Result, g *engine.Game, a Assertion) error {
	if len(g.TurnLog()) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertLogLength,
		Expected: fmt.Sprintf("%d entries in the turn log", a.Count),
		Actual:   fmt.Sprintf("%d entries", len(g.TurnLog())),
		Trace:    result.Trace,
	}
}
