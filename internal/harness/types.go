package harness

import (
	"fmt"
	"strconv"

	"github.com/roach88/mao/internal/engine"
)

// TraceEvent is one executed flow step as it went into the trace.
// Detail is shuffle-independent (hand and stack indices, never card
// faces), so traces golden-compare across decks.
type TraceEvent struct {
	Step       int      `json:"step"`
	Action     string   `json:"action"`
	Player     int      `json:"player"`
	Detail     string   `json:"detail,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

// JournalLine is one journal row read back after the flow.
type JournalLine struct {
	Seq    int64  `json:"seq"`
	Kind   string `json:"kind"`
	Player int    `json:"player"`
	Detail string `json:"detail"`
}

// FinalState is the table after the flow.
type FinalState struct {
	CurrentPlayer  int   `json:"current_player"`
	PreviousPlayer int   `json:"previous_player"`
	Direction      int   `json:"direction"`
	HandSizes      []int `json:"hand_sizes"`
	Stacks         int   `json:"stacks"`
	LogLength      int   `json:"log_length"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace lists the executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Violations collects every violation the flow drew, in order.
	Violations []engine.Violation `json:"violations,omitempty"`

	// Errors holds the failed expectations. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Journal is the match's journaled timeline.
	Journal []JournalLine `json:"journal"`

	// Final is the table state after the flow.
	Final FinalState `json:"final"`
}

// NewResult creates an empty passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Journal: []JournalLine{},
	}
}

// AddError records a failed expectation and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends one executed step.
func (r *Result) addTrace(index int, step FlowStep, violations []engine.Violation) {
	event := TraceEvent{
		Step:   index,
		Action: step.Action,
		Player: step.Player,
		Detail: stepDetail(step),
	}
	for _, v := range violations {
		event.Violations = append(event.Violations, renderViolation(v))
	}
	r.Trace = append(r.Trace, event)
}

func stepDetail(step FlowStep) string {
	switch step.Action {
	case ActionPlay:
		return "card " + strconv.Itoa(step.Card) + " -> " + stackLabel(step.Stack, "new stack")
	case ActionDraw:
		return stackLabel(step.Stack, "any drawable")
	case ActionSay:
		return step.Message
	case ActionPhysical:
		return step.Name
	default:
		return ""
	}
}

func stackLabel(stack *int, fallback string) string {
	if stack == nil {
		return fallback
	}
	return "stack " + strconv.Itoa(*stack)
}

func renderViolation(v engine.Violation) string {
	return fmt.Sprintf("%s: %s (player %d)", v.Rule, v.Message, v.Player)
}
