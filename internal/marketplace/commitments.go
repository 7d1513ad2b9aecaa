package marketplace

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/store"
)

const prefixCommitment = "cm:"

// CommitmentSet is the append-only set of registered seller commitments.
// Membership means "this secret identity may later act as an authorized
// seller". There is no removal operation.
type CommitmentSet struct {
	st *store.StateDB
}

// NewCommitmentSet creates a CommitmentSet over st.
func NewCommitmentSet(st *store.StateDB) *CommitmentSet {
	return &CommitmentSet{st: st}
}

func commitmentKey(cm *big.Int) string {
	return prefixCommitment + hex.EncodeToString(cm.Bytes())
}

// Register inserts cm. Registering an already-present commitment is a
// successful no-op, so pre-committing twice leaks nothing and costs nothing.
func (c *CommitmentSet) Register(cm *big.Int) error {
	c.st.Set(commitmentKey(cm), []byte{1})
	return nil
}

// Contains reports membership of cm.
func (c *CommitmentSet) Contains(cm *big.Int) (bool, error) {
	ok, err := c.st.Has(commitmentKey(cm))
	if err != nil {
		return false, fmt.Errorf("commitment lookup: %w", err)
	}
	return ok, nil
}

// Size returns the number of registered commitments.
func (c *CommitmentSet) Size() (int, error) {
	n := 0
	err := c.st.Iterate(prefixCommitment, func(string, []byte) bool {
		n++
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("commitment scan: %w", err)
	}
	return n, nil
}
