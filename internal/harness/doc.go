// Package harness runs table scenarios against a real game.
//
// A scenario builds a table, feeds it a flow of player actions, and
// checks what came out: the violations each action drew, the final
// table state, and the journaled timeline. Scenarios back both the
// test suite and the simulate command.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario shows"
//	setup:
//	  players: [Ada, Blaise, Curie]
//	  dealer: 0
//	  hand_size: 5
//	  seed: 7
//	  rules: path/to/modules        # optional, relative to the scenario file
//	  effects: path/to/table.toml   # optional, relative to the scenario file
//	  physical_actions: [knock]
//	  activate: [porcelain]         # module names to switch on
//	flow:
//	  - action: play
//	    player: 1
//	    card: 0
//	    stack: 1
//	    expect:
//	      violations: 0
//	  - action: say
//	    player: 1
//	    message: mao
//	assertions:
//	  - type: violation_count
//	    count: 0
//	  - type: current_player
//	    player: 2
//
// Flow actions are play, draw, say, physical, and give_up. A play or
// draw step without a stack index targets a fresh stack (play) or
// whatever drawable pile has cards (draw). A step's expect clause pins
// the violations that exact action drew; omitted, the step runs
// unchecked.
//
// # Assertion Types
//
//   - violation_count: total violations across the whole flow
//   - violation_contains: some violation carries the message substring
//     (and the rule and player, when given)
//   - current_player: whose turn it is after the flow
//   - direction: play direction, 1 or -1
//   - hand_size: a seat's hand length
//   - top_card: the label on top of a stack (default: the opening
//     playable stack)
//   - log_length: entries in the open turn log
//
// # Deterministic Runs
//
// Every scenario runs on a fresh table with an in-memory journal, a
// seeded dealer, and a fixed match token, so two runs of the same file
// produce byte-identical traces. A setup without a seed or token gets
// fixed defaults rather than wall-clock values; scenarios that care
// about the exact deal should pin their own seed.
//
// Golden comparison snapshots the whole run (trace, journal, final
// state) against testdata/golden/{name}.golden via goldie; regenerate
// with:
//
//	go test ./internal/harness -update
package harness
