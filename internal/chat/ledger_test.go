package chat

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLedgerIncrementAndReset(t *testing.T) {
	ledger := NewLedger()
	a, b := uuid.New(), uuid.New()

	assert.Equal(t, 1, ledger.Inc(a))
	assert.Equal(t, 2, ledger.Inc(a))
	assert.Equal(t, 1, ledger.Inc(b))
	assert.Equal(t, 3, ledger.Total())

	ledger.Reset(a)
	assert.Equal(t, 0, ledger.Count(a))
	// Other counterparts are untouched by a reset.
	assert.Equal(t, 1, ledger.Count(b))
	assert.Equal(t, 1, ledger.Total())
}

func TestLedgerResetUnknownCounterpart(t *testing.T) {
	ledger := NewLedger()
	ledger.Reset(uuid.New())
	assert.Equal(t, 0, ledger.Total())
}

func TestLedgerSeed(t *testing.T) {
	ledger := NewLedger()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	ledger.Inc(c)

	ledger.Seed(map[uuid.UUID]int{a: 3, b: 0})

	assert.Equal(t, 3, ledger.Count(a))
	assert.Equal(t, 0, ledger.Count(b))
	// Seed replaces, it does not merge.
	assert.Equal(t, 0, ledger.Count(c))
	assert.Equal(t, 3, ledger.Total())
}

func TestLedgerCountsCopy(t *testing.T) {
	ledger := NewLedger()
	a := uuid.New()
	ledger.Inc(a)

	counts := ledger.Counts()
	counts[a] = 99
	assert.Equal(t, 1, ledger.Count(a))
}
