package engine

import "github.com/roach88/mao/internal/event"

// turnLog is the ordered record of the current round of play. Every
// recordable occurrence is appended as it happens; when a turn ends
// the log is reconciled so that the closing turn's history travels
// with the turn-ended occurrence and leftovers stay for the next one.
type turnLog struct {
	entries []event.Occurrence
}

func (l *turnLog) push(occ event.Occurrence) {
	l.entries = append(l.entries, occ)
}

func (l *turnLog) len() int { return len(l.entries) }

func (l *turnLog) popNewest() (event.Occurrence, bool) {
	if len(l.entries) == 0 {
		return nil, false
	}
	occ := l.entries[len(l.entries)-1]
	l.entries[len(l.entries)-1] = nil
	l.entries = l.entries[:len(l.entries)-1]
	return occ, true
}

// snapshot returns the log oldest first.
func (l *turnLog) snapshot() []event.Occurrence {
	out := make([]event.Occurrence, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *turnLog) clear() {
	l.entries = nil
}

// turnOwner attributes an occurrence to the seat whose turn it counts
// against. Card passes and table-level occurrences belong to no one.
func turnOwner(occ event.Occurrence) (int, bool) {
	switch o := occ.(type) {
	case event.PlayedCard:
		return o.Player, true
	case event.DrewCard:
		return o.Player, true
	case event.DiscardedCard:
		return o.Player, true
	case event.Said:
		return o.Player, true
	case event.DidPhysical:
		return o.Player, true
	default:
		return 0, false
	}
}

// closeTurn folds the closing player's turn out of the log and returns
// it, newest first.
//
// The newest entry is the interaction that is ending the turn right
// now: it is discarded when the interaction was refused (wrong), and
// left untouched otherwise so it can delimit the next close. Scanning
// backward from there, the first turn-changing entry marks where the
// previous turn ended; everything at or below it drains into the
// result. Entries between the two turn boundaries are this round's
// side-chatter: occurrences owned by other seats move out of the log
// into the result, while the closing seat's own stay behind as well as
// being copied in, since they may still matter for its next close.
func (l *turnLog) closeTurn(closing int, wrong bool) []event.Occurrence {
	upper := len(l.entries) - 1
	if wrong {
		l.popNewest()
	}
	if upper < 0 {
		return nil
	}

	delim := -1
	type marked struct {
		index  int
		remove bool
	}
	var marks []marked
	for i := upper - 1; i >= 0; i-- {
		occ := l.entries[i]
		if event.ChangesTurn(occ) {
			delim = i
			break
		}
		owner, owned := turnOwner(occ)
		marks = append(marks, marked{index: i, remove: !owned || owner != closing})
	}

	var payload []event.Occurrence
	for _, m := range marks {
		occ := l.entries[m.index]
		payload = append(payload, occ)
		if m.remove {
			l.entries = append(l.entries[:m.index], l.entries[m.index+1:]...)
		}
	}
	if delim >= 0 {
		drained := l.entries[:delim+1]
		l.entries = append([]event.Occurrence(nil), l.entries[delim+1:]...)
		for i := len(drained) - 1; i >= 0; i-- {
			payload = append(payload, drained[i])
		}
	}
	return payload
}
