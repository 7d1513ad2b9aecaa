package marketplace

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/store"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/testutil"
)

// Review keys must stay fixed-width across the whole uint64 counter range,
// or lexicographic ordering stops matching append order.
func TestAppendReviewKeyWidthCoversUint64(t *testing.T) {
	st := store.NewStateDB(testutil.NewMemDB())
	reg := NewRegistry(st)
	seller := EncodeAccountID([]byte("prolific"))

	// Jump the counter past 16 digits, where a narrower format would
	// overflow its padding.
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], 99999999999999999) // 17 digits
	st.Set(prefixReviewCount+string(seller), buf[:])

	require.NoError(t, reg.AppendReview(seller, []byte("first")))
	require.NoError(t, reg.AppendReview(seller, []byte("second")))
	require.NoError(t, st.Commit())

	got, err := reg.Reviews(seller)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("first"), []byte("second")}, got)
}
