// Package turn tracks whose turn it is at a Mao table: the active seat,
// the direction of play, and the vocabulary of turn changes that card
// effects and rule modules use to alter both.
package turn

import (
	"fmt"
	"strconv"
	"strings"
)

// Updater selects the next active seat. Set assigns an absolute index;
// Step moves a signed number of seats in the current direction.
type Updater interface {
	turnUpdater()
	fmt.Stringer
}

// Set assigns the active seat directly, without wrapping.
type Set int

func (Set) turnUpdater() {}

func (s Set) String() string { return "set_" + strconv.Itoa(int(s)) }

// Step moves the active seat direction·k positions, wrapping with a
// Euclidean remainder so negative steps and overshoots stay in range.
type Step int

func (Step) turnUpdater() {}

func (s Step) String() string { return "up_" + strconv.Itoa(int(s)) }

// Change alters the turn state. Update applies its updater under the
// current direction; Rotate flips the direction first.
type Change interface {
	turnChange()
	fmt.Stringer
}

// Update applies an updater without touching the direction.
type Update struct {
	Updater Updater
}

func (Update) turnChange() {}

func (u Update) String() string { return "up_" + u.Updater.String() }

// Rotate flips the direction of play, then applies its updater.
type Rotate struct {
	Updater Updater
}

func (Rotate) turnChange() {}

func (r Rotate) String() string { return "ro_" + r.Updater.String() }

// DefaultChange is the plain pass to the next seat.
func DefaultChange() Change { return Update{Updater: Step(1)} }

// ParseChange parses the compact form used in effect tables:
// mode ("up" keeps the direction, "ro" rotates), updater ("set" assigns,
// "up" steps), and the operand, joined by underscores. "up_up_2" skips a
// seat; "ro_set_0" reverses play and hands the turn to seat 0.
func ParseChange(s string) (Change, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return nil, fmt.Errorf("turn change %q: want mode_updater_operand", s)
	}
	operand, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("turn change %q: %w", s, err)
	}

	var u Updater
	switch parts[1] {
	case "set":
		if operand < 0 {
			return nil, fmt.Errorf("turn change %q: set operand must not be negative", s)
		}
		u = Set(operand)
	case "up":
		u = Step(operand)
	default:
		return nil, fmt.Errorf("turn change %q: unknown updater %q", s, parts[1])
	}

	switch parts[0] {
	case "up":
		return Update{Updater: u}, nil
	case "ro":
		return Rotate{Updater: u}, nil
	default:
		return nil, fmt.Errorf("turn change %q: unknown mode %q", s, parts[0])
	}
}

// Tracker holds the active seat and the direction of play.
// Direction is +1 or -1.
type Tracker struct {
	Player    int
	Direction int
}

// NewTracker starts play at the given seat, moving forward.
func NewTracker(start int) Tracker {
	return Tracker{Player: start, Direction: 1}
}

// Apply executes a change against a table of n seats.
func (t *Tracker) Apply(c Change, n int) {
	switch c := c.(type) {
	case Update:
		t.applyUpdater(c.Updater, n)
	case Rotate:
		t.Direction = -t.Direction
		t.applyUpdater(c.Updater, n)
	}
}

func (t *Tracker) applyUpdater(u Updater, n int) {
	switch u := u.(type) {
	case Set:
		t.Player = int(u)
	case Step:
		if n <= 0 {
			return
		}
		t.Player = euclidMod(t.Player+t.Direction*int(u), n)
	}
}

func euclidMod(a, n int) int {
	return ((a % n) + n) % n
}
