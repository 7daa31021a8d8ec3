package chat

import "github.com/google/uuid"

// Ledger tracks, per counterpart, how many inbound messages have not
// been acknowledged. Counts never go negative; a reset is absolute.
type Ledger struct {
	counts map[uuid.UUID]int
}

func NewLedger() *Ledger {
	return &Ledger{counts: make(map[uuid.UUID]int)}
}

// Seed replaces the counts with a bootstrap snapshot.
func (l *Ledger) Seed(counts map[uuid.UUID]int) {
	l.counts = make(map[uuid.UUID]int, len(counts))
	for id, n := range counts {
		if n > 0 {
			l.counts[id] = n
		}
	}
}

// Inc increments a counterpart's count and returns the new value.
func (l *Ledger) Inc(counterpart uuid.UUID) int {
	l.counts[counterpart]++
	return l.counts[counterpart]
}

// Reset zeroes a counterpart's count. The reset is optimistic: it is not
// reverted if the corresponding markRead write later fails, since the
// count is rederivable on the next bootstrap.
func (l *Ledger) Reset(counterpart uuid.UUID) {
	delete(l.counts, counterpart)
}

// Count returns a counterpart's unread count.
func (l *Ledger) Count(counterpart uuid.UUID) int {
	return l.counts[counterpart]
}

// Total is the sum over all counterparts, surfaced as the UI badge.
func (l *Ledger) Total() int {
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// Counts returns a copy of the per-counterpart counts.
func (l *Ledger) Counts() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(l.counts))
	for id, n := range l.counts {
		out[id] = n
	}
	return out
}
