// Package setup loads table configuration from CUE files.
//
// A setup declares a single game block:
//
//	game: {
//		players: ["Ada", "Blaise", "Curie"]
//		dealer:    0
//		hand_size: 5
//		seed:      42
//		rules:     "rules"
//		effects:   "effects.toml"
//		physical_actions: ["knock"]
//		can_play_on_new_stack: false
//	}
//
// Load accepts either one .cue file or a directory, in which case every
// .cue file in it is unified under CUE package semantics, so a table
// can keep its players and its house options in separate files.
package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/mao/internal/card"
)

// DefaultHandSize is dealt when a setup does not say otherwise.
const DefaultHandSize = 5

// GameSetup is a decoded table configuration. RulesDir and EffectsFile
// are empty when the setup declares none; relative paths have already
// been resolved against the setup's own directory.
type GameSetup struct {
	Players           []string
	Dealer            int
	HandSize          int
	Seed              int64
	RulesDir          string
	EffectsFile       string
	PhysicalActions   []string
	CanPlayOnNewStack bool
}

// SetupError is one problem found while loading or validating a setup,
// carrying the CUE source position when one is known.
type SetupError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *SetupError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads the setup at path, a .cue file or a directory of them.
// Problems are collected rather than reported one at a time; the setup
// is nil whenever errors come back.
func Load(path string) (*GameSetup, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&SetupError{Field: "path", Message: fmt.Sprintf("setup not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&SetupError{Field: "path", Message: fmt.Sprintf("accessing setup: %v", err)}}
	}

	dir := path
	args := []string{"."}
	if !info.IsDir() {
		dir = filepath.Dir(path)
		args = []string{filepath.Base(path)}
	}

	ctx := cuecontext.New()
	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&SetupError{Field: "cue", Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&SetupError{Field: "cue", Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{cueError(err, "cue")}
	}

	gameVal := value.LookupPath(cue.ParsePath("game"))
	if !gameVal.Exists() {
		return nil, []error{&SetupError{Field: "game", Message: "a setup needs a game block", Pos: value.Pos()}}
	}

	s, errs := decode(gameVal)
	errs = append(errs, s.validate(gameVal)...)
	if len(errs) > 0 {
		return nil, errs
	}

	s.resolvePaths(dir)
	return s, nil
}

// decode pulls every field off the game block, collecting type errors
// instead of stopping at the first.
func decode(v cue.Value) (*GameSetup, []error) {
	var errs []error
	s := &GameSetup{HandSize: DefaultHandSize}

	players, err := stringList(v, "players")
	if err != nil {
		errs = append(errs, err)
	}
	s.Players = players

	dealer, err := intField(v, "dealer", 0)
	if err != nil {
		errs = append(errs, err)
	}
	s.Dealer = int(dealer)

	handSize, err := intField(v, "hand_size", DefaultHandSize)
	if err != nil {
		errs = append(errs, err)
	}
	s.HandSize = int(handSize)

	s.Seed, err = intField(v, "seed", 0)
	if err != nil {
		errs = append(errs, err)
	}

	s.RulesDir, err = stringField(v, "rules")
	if err != nil {
		errs = append(errs, err)
	}

	s.EffectsFile, err = stringField(v, "effects")
	if err != nil {
		errs = append(errs, err)
	}

	s.PhysicalActions, err = stringList(v, "physical_actions")
	if err != nil {
		errs = append(errs, err)
	}

	s.CanPlayOnNewStack, err = boolField(v, "can_play_on_new_stack")
	if err != nil {
		errs = append(errs, err)
	}

	return s, errs
}

// validate applies the table-level checks a decoded setup must pass.
// Checks that depend on the seat count are skipped until there are
// enough players, so one root cause does not fan out into noise.
func (s *GameSetup) validate(v cue.Value) []error {
	var errs []error

	if len(s.Players) < 2 {
		errs = append(errs, &SetupError{
			Field:   "players",
			Message: "a table needs at least two players",
			Pos:     fieldPos(v, "players"),
		})
	}
	seen := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, &SetupError{
				Field:   "players",
				Message: "a pseudo cannot be blank",
				Pos:     fieldPos(v, "players"),
			})
			continue
		}
		if seen[p] {
			errs = append(errs, &SetupError{
				Field:   "players",
				Message: fmt.Sprintf("duplicate pseudo %q", p),
				Pos:     fieldPos(v, "players"),
			})
		}
		seen[p] = true
	}

	if s.HandSize < 1 {
		errs = append(errs, &SetupError{
			Field:   "hand_size",
			Message: fmt.Sprintf("hand size %d deals nothing", s.HandSize),
			Pos:     fieldPos(v, "hand_size"),
		})
	}

	if len(s.Players) >= 2 {
		if s.Dealer < 0 || s.Dealer >= len(s.Players) {
			errs = append(errs, &SetupError{
				Field:   "dealer",
				Message: fmt.Sprintf("dealer seat %d is not at the table", s.Dealer),
				Pos:     fieldPos(v, "dealer"),
			})
		}
		// One card opens the playable stack, the rest can be dealt.
		if max := card.DeckSize - 1; s.HandSize >= 1 && len(s.Players)*s.HandSize > max {
			errs = append(errs, &SetupError{
				Field:   "hand_size",
				Message: fmt.Sprintf("dealing %d cards to %d players takes %d, the deck has %d to give",
					s.HandSize, len(s.Players), len(s.Players)*s.HandSize, max),
				Pos: fieldPos(v, "hand_size"),
			})
		}
	}

	actions := make(map[string]bool, len(s.PhysicalActions))
	for _, a := range s.PhysicalActions {
		if strings.TrimSpace(a) == "" {
			errs = append(errs, &SetupError{
				Field:   "physical_actions",
				Message: "a physical action cannot be blank",
				Pos:     fieldPos(v, "physical_actions"),
			})
			continue
		}
		if actions[a] {
			errs = append(errs, &SetupError{
				Field:   "physical_actions",
				Message: fmt.Sprintf("duplicate physical action %q", a),
				Pos:     fieldPos(v, "physical_actions"),
			})
		}
		actions[a] = true
	}

	return errs
}

// resolvePaths anchors relative rules/effects paths at the setup's
// directory, so a setup can be loaded from anywhere.
func (s *GameSetup) resolvePaths(dir string) {
	if s.RulesDir != "" && !filepath.IsAbs(s.RulesDir) {
		s.RulesDir = filepath.Join(dir, s.RulesDir)
	}
	if s.EffectsFile != "" && !filepath.IsAbs(s.EffectsFile) {
		s.EffectsFile = filepath.Join(dir, s.EffectsFile)
	}
}

// stringField reads an optional string field.
func stringField(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", cueError(err, field)
	}
	return s, nil
}

// intField reads an optional integer field, falling back to def.
func intField(v cue.Value, field string, def int64) (int64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return def, cueError(err, field)
	}
	return n, nil
}

// boolField reads an optional boolean field, defaulting to false.
func boolField(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, cueError(err, field)
	}
	return b, nil
}

// stringList reads an optional list-of-strings field.
func stringList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, cueError(err, field)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, cueError(err, field)
		}
		out = append(out, s)
	}
	return out, nil
}

// fieldPos is the source position of a field, or of the enclosing game
// block when the field is absent.
func fieldPos(v cue.Value, field string) token.Pos {
	if fv := v.LookupPath(cue.ParsePath(field)); fv.Exists() {
		return fv.Pos()
	}
	return v.Pos()
}

// cueError rewraps a CUE evaluation error as a SetupError, keeping the
// first reported position.
func cueError(err error, field string) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &SetupError{Field: field, Message: err.Error()}
	}
	first := errs[0]
	se := &SetupError{Field: field, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		se.Pos = positions[0]
	}
	return se
}
