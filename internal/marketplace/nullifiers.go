package marketplace

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/store"
)

const prefixNullifier = "nf:"

// NullifierSet records which private claims have been consumed. A nullifier,
// once present, is permanent; attempting to consume it again must reject the
// surrounding transition.
type NullifierSet struct {
	st *store.StateDB
}

// NewNullifierSet creates a NullifierSet over st.
func NewNullifierSet(st *store.StateDB) *NullifierSet {
	return &NullifierSet{st: st}
}

func nullifierKey(nf *big.Int) string {
	return prefixNullifier + hex.EncodeToString(nf.Bytes())
}

// TryConsume checks absence and inserts nf as one step against the state
// buffer. It returns true on first consumption; false means a replay and the
// caller must reject its transition. The insert participates in the
// operation's snapshot, so a transition failing a later guard leaves the
// nullifier unspent.
func (n *NullifierSet) TryConsume(nf *big.Int) (bool, error) {
	key := nullifierKey(nf)
	spent, err := n.st.Has(key)
	if err != nil {
		return false, fmt.Errorf("nullifier lookup: %w", err)
	}
	if spent {
		return false, nil
	}
	n.st.Set(key, []byte{1})
	return true, nil
}

// Contains reports whether nf has been consumed. Diagnostics only; mutating
// call sites must use TryConsume.
func (n *NullifierSet) Contains(nf *big.Int) (bool, error) {
	ok, err := n.st.Has(nullifierKey(nf))
	if err != nil {
		return false, fmt.Errorf("nullifier lookup: %w", err)
	}
	return ok, nil
}
