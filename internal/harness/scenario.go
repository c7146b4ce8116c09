package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one table script: how the game opens, what the players
// do, and what must be true afterwards.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario shows.
	Description string `yaml:"description"`

	// Setup opens the table.
	Setup SetupBlock `yaml:"setup"`

	// Flow is the sequence of player actions.
	Flow []FlowStep `yaml:"flow"`

	// Assertions check the table after the flow has run.
	Assertions []Assertion `yaml:"assertions"`
}

// SetupBlock carries the table parameters. Rules and effects paths are
// resolved against the scenario file's directory at load time.
type SetupBlock struct {
	Players           []string `yaml:"players"`
	Dealer            int      `yaml:"dealer,omitempty"`
	HandSize          int      `yaml:"hand_size,omitempty"`
	Seed              int64    `yaml:"seed,omitempty"`
	Rules             string   `yaml:"rules,omitempty"`
	Effects           string   `yaml:"effects,omitempty"`
	PhysicalActions   []string `yaml:"physical_actions,omitempty"`
	CanPlayOnNewStack bool     `yaml:"can_play_on_new_stack,omitempty"`

	// Activate lists rule module names to switch on after the deal.
	Activate []string `yaml:"activate,omitempty"`

	// MatchToken fixes the journal token. Empty defaults to
	// "scenario-match" so golden traces stay stable.
	MatchToken string `yaml:"match_token,omitempty"`
}

// Fixed fallbacks for fields a scenario leaves out. A zero seed would
// otherwise mean "shuffle off the wall clock", which no scenario wants.
const (
	defaultSeed       int64 = 1
	defaultHandSize         = 5
	defaultMatchToken       = "scenario-match"
)

func (s SetupBlock) seed() int64 {
	if s.Seed == 0 {
		return defaultSeed
	}
	return s.Seed
}

func (s SetupBlock) handSize() int {
	if s.HandSize == 0 {
		return defaultHandSize
	}
	return s.HandSize
}

func (s SetupBlock) matchToken() string {
	if s.MatchToken == "" {
		return defaultMatchToken
	}
	return s.MatchToken
}

// FlowStep is one player action. Card is a hand index; Stack is a
// stack index, nil meaning a fresh stack for plays and any drawable
// pile for draws.
type FlowStep struct {
	Action  string        `yaml:"action"`
	Player  int           `yaml:"player"`
	Card    int           `yaml:"card,omitempty"`
	Stack   *int          `yaml:"stack,omitempty"`
	Message string        `yaml:"message,omitempty"`
	Name    string        `yaml:"name,omitempty"`
	Expect  *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause pins the violations one step drew. Contains entries are
// substring matches against the step's violation messages.
type ExpectClause struct {
	Violations int      `yaml:"violations"`
	Contains   []string `yaml:"contains,omitempty"`
}

// Flow action names.
const (
	ActionPlay     = "play"
	ActionDraw     = "draw"
	ActionSay      = "say"
	ActionPhysical = "physical"
	ActionGiveUp   = "give_up"
)

// Assertion checks the table after the flow. Which fields apply
// depends on Type; see the package documentation.
type Assertion struct {
	Type    string `yaml:"type"`
	Count   int    `yaml:"count,omitempty"`
	Message string `yaml:"message,omitempty"`
	Rule    string `yaml:"rule,omitempty"`
	Player  *int   `yaml:"player,omitempty"`
	Value   int    `yaml:"value,omitempty"`
	Stack   *int   `yaml:"stack,omitempty"`
	Card    string `yaml:"card,omitempty"`
}

// Assertion type names.
const (
	AssertViolationCount    = "violation_count"
	AssertViolationContains = "violation_contains"
	AssertCurrentPlayer     = "current_player"
	AssertDirection         = "direction"
	AssertHandSize          = "hand_size"
	AssertTopCard           = "top_card"
	AssertLogLength         = "log_length"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected, so a typo like "assertion:" fails loudly instead of
// silently dropping checks. Relative rules and effects paths resolve
// against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	base := filepath.Dir(path)
	if scenario.Setup.Rules != "" && !filepath.IsAbs(scenario.Setup.Rules) {
		scenario.Setup.Rules = filepath.Join(base, scenario.Setup.Rules)
	}
	if scenario.Setup.Effects != "" && !filepath.IsAbs(scenario.Setup.Effects) {
		scenario.Setup.Effects = filepath.Join(base, scenario.Setup.Effects)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks required fields before any table is built,
// so a broken file fails with a field name instead of an engine error.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Setup.Players) < 2 {
		return fmt.Errorf("setup.players needs at least two seats")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Setup.Rules != "" {
		if _, err := os.Stat(s.Setup.Rules); os.IsNotExist(err) {
			return fmt.Errorf("setup.rules directory not found: %s", s.Setup.Rules)
		}
	}
	if s.Setup.Effects != "" {
		if _, err := os.Stat(s.Setup.Effects); os.IsNotExist(err) {
			return fmt.Errorf("setup.effects file not found: %s", s.Setup.Effects)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step FlowStep) error {
	switch step.Action {
	case ActionPlay:
		if step.Card < 0 {
			return fmt.Errorf("flow[%d]: card index must be non-negative", index)
		}
	case ActionDraw, ActionGiveUp:
		// player is enough
	case ActionSay:
		if step.Message == "" {
			return fmt.Errorf("flow[%d]: message is required for say", index)
		}
	case ActionPhysical:
		if step.Name == "" {
			return fmt.Errorf("flow[%d]: name is required for physical", index)
		}
	case "":
		return fmt.Errorf("flow[%d]: action is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown action %q", index, step.Action)
	}
	if step.Player < 0 {
		return fmt.Errorf("flow[%d]: player must be non-negative", index)
	}
	if step.Expect != nil && step.Expect.Violations < 0 {
		return fmt.Errorf("flow[%d].expect: violations must be non-negative", index)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertViolationCount, AssertLogLength:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertViolationContains:
		if a.Message == "" {
			return fmt.Errorf("assertions[%d]: message is required for violation_contains", index)
		}
	case AssertCurrentPlayer:
		if a.Player == nil {
			return fmt.Errorf("assertions[%d]: player is required for current_player", index)
		}
	case AssertDirection:
		if a.Value != 1 && a.Value != -1 {
			return fmt.Errorf("assertions[%d]: value must be 1 or -1 for direction", index)
		}
	case AssertHandSize:
		if a.Player == nil {
			return fmt.Errorf("assertions[%d]: player is required for hand_size", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for hand_size", index)
		}
	case AssertTopCard:
		if a.Card == "" {
			return fmt.Errorf("assertions[%d]: card is required for top_card", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
