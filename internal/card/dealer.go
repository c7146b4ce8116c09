package card

import (
	"math/rand"
	"time"
)

// Dealer shuffles decks. The production dealer is seeded so a table can
// be re-dealt deterministically; tests and the scenario harness pin the
// seed.
type Dealer interface {
	Shuffle(cards []Card)
}

// NewDealer returns a Fisher-Yates dealer backed by math/rand. A zero
// seed derives the seed from the wall clock.
func NewDealer(seed int64) Dealer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randDealer{rng: rand.New(rand.NewSource(seed))}
}

type randDealer struct {
	rng *rand.Rand
}

func (d *randDealer) Shuffle(cards []Card) {
	d.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
