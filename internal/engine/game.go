package engine

import (
	"log/slog"

	"github.com/roach88/mao/internal/card"
	"github.com/roach88/mao/internal/effect"
	"github.com/roach88/mao/internal/event"
	"github.com/roach88/mao/internal/turn"
)

// Journal receives every recordable occurrence and every violation the
// table resolves, keyed by match token. Implemented by the SQLite
// store; a nil journal disables recording.
type Journal interface {
	RecordOccurrence(matchToken string, seq int64, occ event.Occurrence) error
	RecordViolation(matchToken string, seq int64, v Violation) error
}

// Game owns the whole table: seats, stacks, the turn tracker, the
// interaction automaton, the rule modules and their card effects, and
// the per-turn occurrence log.
//
// All mutation is single-threaded. Rule modules only touch the table
// through the *Game handle they are passed for the duration of their
// own call; whatever they keep between calls lives in the rule-keyed
// data stores.
type Game struct {
	logger  *slog.Logger
	clock   *Clock
	tokens  MatchTokenGenerator
	journal Journal

	matchToken string

	players []*Player
	stacks  []*Stack

	tracker  turn.Tracker
	previous int // seat that ended the last turn, -1 when unset
	dealer   int

	available []Rule
	activated []int

	automaton *Automaton
	effects   *effect.Table
	physical  []string

	log  *turnLog
	data *DataStore

	shuffler card.Dealer

	canPlayOnNewStack bool
}

// GameOption configures a Game at construction.
type GameOption func(*Game)

// WithLogger routes the table's structured logs. Defaults to
// slog.Default.
func WithLogger(l *slog.Logger) GameOption {
	return func(g *Game) { g.logger = l }
}

// WithJournal attaches a durable journal for occurrences and
// violations.
func WithJournal(j Journal) GameOption {
	return func(g *Game) { g.journal = j }
}

// WithMatchTokens overrides the match-token generator, mainly so tests
// can pin the token.
func WithMatchTokens(gen MatchTokenGenerator) GameOption {
	return func(g *Game) { g.tokens = gen }
}

// WithClock overrides the journal sequence clock.
func WithClock(c *Clock) GameOption {
	return func(g *Game) { g.clock = c }
}

// WithDealer overrides the shuffler, mainly so tests and scripted
// scenarios get reproducible decks.
func WithDealer(d card.Dealer) GameOption {
	return func(g *Game) { g.shuffler = d }
}

// WithEffects seeds the card-effect table, usually from a TOML file.
func WithEffects(t *effect.Table) GameOption {
	return func(g *Game) { g.effects = t }
}

// WithPhysicalActions declares the gestures players can perform
// through the select-player interaction chain.
func WithPhysicalActions(names ...string) GameOption {
	return func(g *Game) { g.physical = append(g.physical, names...) }
}

// WithCanPlayOnNewStack allows plays to open a fresh playable stack
// instead of landing on an existing one.
func WithCanPlayOnNewStack(allowed bool) GameOption {
	return func(g *Game) { g.canPlayOnNewStack = allowed }
}

// NewGame seats the given players and wires the table with its
// built-in interaction paths. The deck is shuffled, one card is
// flipped to open the playable stack, and the second seat opens play.
// No cards are dealt yet; call InitNewGame for that.
//
// Modules in rules are available but not active.
func NewGame(pseudos []string, rules []Rule, opts ...GameOption) (*Game, error) {
	if len(pseudos) < 2 {
		return nil, &GameError{Code: ErrCodeInvalidConfig, Message: "a table needs at least two players"}
	}
	g := &Game{
		logger:   slog.Default(),
		clock:    NewClock(),
		tokens:   UUIDv7Generator{},
		tracker:  turn.NewTracker(1),
		previous: -1,
		dealer:   0,
		log:      &turnLog{},
		data:     NewDataStore(),
		effects:  effect.NewTable(),
		shuffler: card.NewDealer(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.matchToken = g.tokens.Generate()

	g.players = make([]*Player, len(pseudos))
	for i, pseudo := range pseudos {
		g.players[i] = NewPlayer(pseudo)
	}
	g.available = append(g.available, rules...)
	g.stacks = initStacks(g.shuffler)

	auto, err := NewAutomaton(g.builtinPaths()...)
	if err != nil {
		return nil, err
	}
	g.automaton = auto

	if err := g.VerifyRules(); err != nil {
		return nil, err
	}
	g.logger.Info("table ready",
		"match", g.matchToken,
		"players", len(g.players),
		"rules", len(g.available))
	return g, nil
}

// initStacks builds the three table piles: the face-down draw pile
// with the full shuffled deck, the playable stack opened with one
// drawn card, and an empty discard pile.
func initStacks(shuffler card.Dealer) []*Stack {
	deck := card.NewDeck()
	shuffler.Shuffle(deck)

	drawable := NewStack(deck, false, Drawable)
	first, _ := drawable.Draw()
	playable := NewStack([]card.Card{first}, true, Playable)
	discard := NewStack(nil, true, Discardable)
	return []*Stack{drawable, playable, discard}
}

// builtinPaths are the interaction chains every table understands:
// play a card onto a playable stack, draw from a drawable stack, and
// perform a physical action against a player.
func (g *Game) builtinPaths() []Path {
	return []Path{
		{
			Tokens:  []Token{SelectCard, SelectPlayableStack},
			Handler: playInteraction,
		},
		{
			Tokens:  []Token{SelectDrawableStack},
			Handler: drawInteraction,
		},
		{
			Tokens:  []Token{SelectPlayer, DoAction},
			Handler: physicalInteraction,
		},
	}
}

// MatchToken identifies this match in the journal.
func (g *Game) MatchToken() string { return g.matchToken }

// Players returns the seats in table order.
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// Player returns the seat at index.
func (g *Game) Player(index int) (*Player, error) {
	if index < 0 || index >= len(g.players) {
		return nil, NewInvalidPlayerIndex(index, len(g.players))
	}
	return g.players[index], nil
}

// Stacks returns the table piles in creation order.
func (g *Game) Stacks() []*Stack {
	out := make([]*Stack, len(g.stacks))
	copy(out, g.stacks)
	return out
}

// Stack returns the pile at index.
func (g *Game) Stack(index int) (*Stack, error) {
	if index < 0 || index >= len(g.stacks) {
		return nil, NewInvalidStackIndex(index, len(g.stacks))
	}
	return g.stacks[index], nil
}

// StacksOf returns the indices of the piles carrying any of the given
// tags, in table order.
func (g *Game) StacksOf(kinds ...StackKind) []int {
	var out []int
	for i, s := range g.stacks {
		for _, k := range kinds {
			if s.Is(k) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// CurrentPlayer is the seat whose turn it is.
func (g *Game) CurrentPlayer() int { return g.tracker.Player }

// Direction is +1 for clockwise play, -1 for counterclockwise.
func (g *Game) Direction() int { return g.tracker.Direction }

// PreviousPlayer is the seat that ended the last turn, or -1 before
// anyone has.
func (g *Game) PreviousPlayer() int { return g.previous }

// Dealer is the seat that dealt this game.
func (g *Game) Dealer() int { return g.dealer }

// SetDealer moves the deal to the given seat.
func (g *Game) SetDealer(index int) error {
	if index < 0 || index >= len(g.players) {
		return NewInvalidPlayerIndex(index, len(g.players))
	}
	g.dealer = index
	return nil
}

// PhysicalActions lists the declared gestures.
func (g *Game) PhysicalActions() []string {
	out := make([]string, len(g.physical))
	copy(out, g.physical)
	return out
}

// CanPlayOnNewStack reports whether plays may open a fresh stack.
func (g *Game) CanPlayOnNewStack() bool { return g.canPlayOnNewStack }

// SetCanPlayOnNewStack toggles opening fresh stacks on play.
func (g *Game) SetCanPlayOnNewStack(allowed bool) {
	g.canPlayOnNewStack = allowed
}

// Automaton exposes the interaction trie, letting callers feed partial
// interactions and inspect pending state.
func (g *Game) Automaton() *Automaton { return g.automaton }

// Effects is the live card-effect table.
func (g *Game) Effects() *effect.Table { return g.effects }

// Data is the game-scoped rule store.
func (g *Game) Data() *DataStore { return g.data }

// TurnLog returns the pending occurrence log, oldest first.
func (g *Game) TurnLog() []event.Occurrence { return g.log.snapshot() }

// PlayerWon returns the first seat with an empty hand, if any.
func (g *Game) PlayerWon() (int, bool) {
	for i, p := range g.players {
		if p.HandLen() == 0 {
			return i, true
		}
	}
	return -1, false
}

// pile resolves an occurrence target to the stack or hand it names.
func (g *Game) pile(t event.Target) (Pile, error) {
	switch t := t.(type) {
	case event.StackTarget:
		return g.Stack(int(t))
	case event.HandTarget:
		return g.Player(int(t))
	default:
		return nil, NewMalformedInteraction("unknown pile target")
	}
}

// PushCardTo places a card on top of the stack or hand t names.
func (g *Game) PushCardTo(t event.Target, c card.Card) error {
	p, err := g.pile(t)
	if err != nil {
		return err
	}
	p.AddCard(c)
	return nil
}

// RemoveCardFrom takes the card at index out of the stack or hand t
// names.
func (g *Game) RemoveCardFrom(t event.Target, index int) (card.Card, error) {
	p, err := g.pile(t)
	if err != nil {
		return card.Card{}, err
	}
	return p.RemoveCard(index)
}

// newPlayedStack opens a fresh visible playable stack holding cards.
func (g *Game) newPlayedStack(cards []card.Card) {
	g.stacks = append(g.stacks, NewStack(cards, true, Playable))
}

// InitNewGame resets the table for a fresh deal: hands cleared, stacks
// rebuilt from a reshuffled deck, the log emptied, the automaton
// cursor reset, and handSize cards dealt to every seat.
func (g *Game) InitNewGame(handSize int) error {
	for _, p := range g.players {
		p.clearHand()
	}
	g.stacks = initStacks(g.shuffler)
	g.log.clear()
	g.automaton.Reset()
	g.previous = -1

	for i := range g.players {
		cards, err := g.drawMultiple(handSize)
		if err != nil {
			return err
		}
		for _, c := range cards {
			g.players[i].AddCard(c)
		}
	}
	g.logger.Info("new game dealt", "match", g.matchToken, "hand_size", handSize)
	return nil
}

// CardEffects returns every effect bound to the card, value-keyed
// entries first, then kind-keyed, then exact.
func (g *Game) CardEffects(c card.Card) []effect.Effect {
	return g.effects.Lookup(c)
}

// DealTo draws n cards off the drawable stacks into the player's hand,
// refilling from the other piles as needed.
func (g *Game) DealTo(player, n int) error {
	p, err := g.Player(player)
	if err != nil {
		return err
	}
	cards, err := g.drawMultiple(n)
	if err != nil {
		return err
	}
	for _, c := range cards {
		p.AddCard(c)
	}
	return nil
}
