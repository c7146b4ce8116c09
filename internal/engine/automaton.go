package engine

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

// Handler resolves a completed interaction chain against the game. It
// returns the violations the attempt produced, if any.
type Handler func(g *Game, player int, steps []Step) ([]Violation, error)

// Path declares one root-to-leaf chain: the tokens of the chain and the
// handler resolving it. The final token owns the handler. Rule names
// the module the path belongs to, empty for built-in paths.
type Path struct {
	Tokens  []Token
	Rule    string
	Handler Handler
}

type nodeID int

const rootID nodeID = 0

// node is an arena slot. Branches have no handler; leaves carry the
// handler and its owning rule. The step payload is overwritten each
// time the cursor advances through the node.
type node struct {
	parent   nodeID
	children []nodeID
	step     Step
	rule     string
	handler  Handler
}

func (n *node) leaf() bool { return n.handler != nil }

// Automaton is the prefix tree of multi-step player interactions. Nodes
// live in an arena; the cursor tracks the partial chain entered so far.
type Automaton struct {
	nodes  []node
	cursor nodeID
}

// NewAutomaton builds an automaton holding the given paths.
func NewAutomaton(paths ...Path) (*Automaton, error) {
	a := &Automaton{nodes: []node{{parent: -1}}}
	if err := a.Extend(paths); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Automaton) node(id nodeID) *node { return &a.nodes[id] }

// Insert adds one path, reusing existing branches token by token. A
// second leaf with the same token and owning rule under one parent is a
// duplicate and a hard error.
func (a *Automaton) Insert(p Path) error {
	if len(p.Tokens) == 0 {
		return NewMalformedInteraction("empty automaton path")
	}
	if p.Handler == nil {
		return NewMalformedInteraction(fmt.Sprintf("automaton path %v has no handler", p.Tokens))
	}

	parent := rootID
	for _, tok := range p.Tokens[:len(p.Tokens)-1] {
		next, ok := a.branchChild(parent, tok)
		if !ok {
			next = a.appendNode(parent, node{step: Step{Token: tok}})
		}
		parent = next
	}

	last := p.Tokens[len(p.Tokens)-1]
	for _, id := range a.node(parent).children {
		child := a.node(id)
		if child.leaf() && child.step.Token == last && child.rule == p.Rule {
			return &GameError{
				Code:    ErrCodeDuplicatePath,
				Message: fmt.Sprintf("path %v already resolved under the same parent", p.Tokens),
				Rule:    p.Rule,
			}
		}
	}
	a.appendNode(parent, node{step: Step{Token: last}, rule: p.Rule, handler: p.Handler})
	return nil
}

// Extend inserts every path.
func (a *Automaton) Extend(paths []Path) error {
	for _, p := range paths {
		if err := a.Insert(p); err != nil {
			return err
		}
	}
	return nil
}

// RemovePaths structurally removes paths. Each chain is resolved from
// the root, branches by token and the leaf by token plus owning rule
// plus handler identity, then deleted leaf-upward while nodes are
// childless. Chains that do not resolve are skipped.
func (a *Automaton) RemovePaths(paths []Path) {
	for _, p := range paths {
		if len(p.Tokens) == 0 || p.Handler == nil {
			continue
		}

		ids := make([]nodeID, 0, len(p.Tokens))
		current := rootID
		resolved := true
		for _, tok := range p.Tokens[:len(p.Tokens)-1] {
			next, ok := a.branchChild(current, tok)
			if !ok {
				resolved = false
				break
			}
			ids = append(ids, next)
			current = next
		}
		if !resolved {
			continue
		}
		leaf, ok := a.leafChild(current, p.Tokens[len(p.Tokens)-1], p.Rule, p.Handler)
		if !ok {
			continue
		}
		ids = append(ids, leaf)

		for i := len(ids) - 1; i >= 0; i-- {
			if len(a.node(ids[i]).children) > 0 {
				break
			}
			a.detach(ids[i])
		}
	}
}

func (a *Automaton) appendNode(parent nodeID, n node) nodeID {
	n.parent = parent
	id := nodeID(len(a.nodes))
	a.nodes = append(a.nodes, n)
	a.node(parent).children = append(a.node(parent).children, id)
	return id
}

func (a *Automaton) detach(id nodeID) {
	parent := a.node(id).parent
	a.node(parent).children = slices.DeleteFunc(a.node(parent).children, func(c nodeID) bool {
		return c == id
	})
}

// branchChild finds the handlerless child of parent carrying the token.
// Insertion merges branches by token, so there is at most one.
func (a *Automaton) branchChild(parent nodeID, tok Token) (nodeID, bool) {
	for _, id := range a.node(parent).children {
		child := a.node(id)
		if !child.leaf() && child.step.Token == tok {
			return id, true
		}
	}
	return 0, false
}

func (a *Automaton) leafChild(parent nodeID, tok Token, rule string, h Handler) (nodeID, bool) {
	want := handlerPtr(h)
	for _, id := range a.node(parent).children {
		child := a.node(id)
		if child.leaf() && child.step.Token == tok && child.rule == rule && handlerPtr(child.handler) == want {
			return id, true
		}
	}
	return 0, false
}

// handlerPtr is the identity of a handler. Closures get distinct
// identities; named functions shared between paths compare equal.
func handlerPtr(h Handler) uintptr {
	if h == nil {
		return 0
	}
	return reflect.ValueOf(h).Pointer()
}

// ActionResult is the outcome of feeding one step to the automaton.
type ActionResult interface {
	actionResult()
}

// NoMatch reports that nothing under the cursor matches the step.
type NoMatch struct{}

func (NoMatch) actionResult() {}

// Advanced reports that the cursor moved one branch deeper; the chain
// is still incomplete.
type Advanced struct{}

func (Advanced) actionResult() {}

// Resolved reports a completed chain. Steps is the full root-to-leaf
// sequence with payloads; the cursor is back at the root.
type Resolved struct {
	Steps   []Step
	Rule    string
	Handler Handler
}

func (Resolved) actionResult() {}

// Candidates reports that several children match the token; the caller
// picks one with OnActionIndexed. Branch options always sort after
// leaves.
type Candidates struct {
	Options []Option
}

func (Candidates) actionResult() {}

// Option describes one matching child during disambiguation.
type Option struct {
	Token Token
	Rule  string
	Leaf  bool
}

// OnAction feeds one step to the automaton: no match, advance into a
// branch, resolve a leaf, or a candidate list when several children
// match.
func (a *Automaton) OnAction(step Step) ActionResult {
	matches := a.matching(step.Token)
	switch len(matches) {
	case 0:
		return NoMatch{}
	case 1:
		id := matches[0]
		if a.node(id).leaf() {
			return a.resolve(id, step)
		}
		a.advance(id, step)
		return Advanced{}
	default:
		a.orderCandidates(matches)
		options := make([]Option, len(matches))
		for i, id := range matches {
			n := a.node(id)
			options[i] = Option{Token: n.step.Token, Rule: n.rule, Leaf: n.leaf()}
		}
		return Candidates{Options: options}
	}
}

// OnActionIndexed disambiguates a candidate list: it re-runs the match
// for the step and advances into (or resolves) the index-th candidate.
// An out-of-range index is a hard error, distinct from no-match.
func (a *Automaton) OnActionIndexed(step Step, index int) (ActionResult, error) {
	matches := a.matching(step.Token)
	if len(matches) < 2 {
		return nil, NewMalformedInteraction(fmt.Sprintf("step %s does not lead to multiple candidates", step))
	}
	a.orderCandidates(matches)
	if index < 0 || index >= len(matches) {
		return nil, &GameError{
			Code:    ErrCodeBadChoice,
			Message: "candidate index out of range",
			Index:   index,
			Length:  len(matches),
		}
	}

	id := matches[index]
	if a.node(id).leaf() {
		return a.resolve(id, step), nil
	}
	a.advance(id, step)
	return Advanced{}, nil
}

// matching returns the children of the cursor carrying the token, in
// child order.
func (a *Automaton) matching(tok Token) []nodeID {
	var out []nodeID
	for _, id := range a.node(a.cursor).children {
		if a.node(id).step.Token == tok {
			out = append(out, id)
		}
	}
	return out
}

// orderCandidates swaps the branch candidate to the back of the list.
func (a *Automaton) orderCandidates(ids []nodeID) {
	for i, id := range ids {
		if !a.node(id).leaf() {
			ids[i], ids[len(ids)-1] = ids[len(ids)-1], ids[i]
			break
		}
	}
}

func (a *Automaton) resolve(id nodeID, step Step) Resolved {
	n := a.node(id)
	steps := a.ExecutedSteps()
	steps = append(steps, step)
	a.Reset()
	return Resolved{Steps: steps, Rule: n.rule, Handler: n.handler}
}

func (a *Automaton) advance(id nodeID, step Step) {
	a.cursor = id
	a.node(id).step.Payload = step.Payload
}

// ExecutedSteps returns the steps entered so far, oldest first, with
// the payloads recorded while advancing.
func (a *Automaton) ExecutedSteps() []Step {
	var steps []Step
	for id := a.cursor; id != rootID; id = a.node(id).parent {
		steps = append(steps, a.node(id).step)
	}
	slices.Reverse(steps)
	return steps
}

// CancelLast moves the cursor back one step and returns the undone
// step. At the root there is nothing to undo.
func (a *Automaton) CancelLast() (Step, bool) {
	if a.cursor == rootID {
		return Step{}, false
	}
	undone := a.node(a.cursor).step
	a.cursor = a.node(a.cursor).parent
	return undone, true
}

// Reset puts the cursor back at the root.
func (a *Automaton) Reset() {
	a.cursor = rootID
}

// PathExists walks the chain's branch tokens from the current cursor
// without moving it, ignoring the final step.
func (a *Automaton) PathExists(tokens []Token) bool {
	if len(tokens) == 0 {
		return true
	}
	current := a.cursor
	for _, tok := range tokens[:len(tokens)-1] {
		next, ok := a.branchChild(current, tok)
		if !ok {
			return false
		}
		current = next
	}
	return true
}

// Equal compares automatons structurally, independent of insertion
// order and transient payloads: branches by token, leaves by token,
// owning rule, and handler identity.
func (a *Automaton) Equal(b *Automaton) bool {
	return a.sameNode(rootID, b, rootID)
}

func (a *Automaton) sameNode(aid nodeID, b *Automaton, bid nodeID) bool {
	ac := slices.Clone(a.node(aid).children)
	bc := slices.Clone(b.node(bid).children)
	if len(ac) != len(bc) {
		return false
	}
	a.sortIDs(ac)
	b.sortIDs(bc)

	for i := range ac {
		an, bn := a.node(ac[i]), b.node(bc[i])
		if an.leaf() != bn.leaf() || an.step.Token != bn.step.Token {
			return false
		}
		if an.leaf() && (an.rule != bn.rule || handlerPtr(an.handler) != handlerPtr(bn.handler)) {
			return false
		}
		if !a.sameNode(ac[i], b, bc[i]) {
			return false
		}
	}
	return true
}

func (a *Automaton) sortIDs(ids []nodeID) {
	slices.SortFunc(ids, func(x, y nodeID) int {
		nx, ny := a.node(x), a.node(y)
		if c := cmp.Compare(nx.step.Token, ny.step.Token); c != 0 {
			return c
		}
		if c := cmp.Compare(nx.rule, ny.rule); c != 0 {
			return c
		}
		return cmp.Compare(handlerPtr(nx.handler), handlerPtr(ny.handler))
	})
}
