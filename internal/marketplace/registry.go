package marketplace

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/store"
)

// State key prefixes. Commitments and nullifiers get their own prefixes in
// commitments.go / nullifiers.go.
const (
	prefixProfile     = "user:"
	prefixAsset       = "asset:"
	prefixReview      = "review:"
	prefixReviewCount = "reviewc:"
	keySale           = "sale"
)

// Registry provides typed access to UserProfile, Asset, Sale, and review
// records over the state buffer. It performs no guards of its own; the
// controller owns the business rules.
type Registry struct {
	st *store.StateDB
}

// NewRegistry creates a Registry over st.
func NewRegistry(st *store.StateDB) *Registry {
	return &Registry{st: st}
}

func assetKey(id uint32) string {
	return fmt.Sprintf("%s%d", prefixAsset, id)
}

// Profile returns the profile for id, or a zero-value profile if the
// account has no record yet.
func (r *Registry) Profile(id AccountID) (*UserProfile, error) {
	data, err := r.st.Get(prefixProfile + string(id))
	if errors.Is(err, store.ErrNotFound) {
		return &UserProfile{Account: id, Balance: uint256.NewInt(0)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", id, err)
	}
	var p UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	if p.Balance == nil {
		p.Balance = uint256.NewInt(0)
	}
	return &p, nil
}

// PutProfile stores p.
func (r *Registry) PutProfile(p *UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.Account, err)
	}
	r.st.Set(prefixProfile+string(p.Account), data)
	return nil
}

// Asset returns the asset record for id.
func (r *Registry) Asset(id uint32) (*Asset, error) {
	data, err := r.st.Get(assetKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load asset %d: %w", id, err)
	}
	var a Asset
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode asset %d: %w", id, err)
	}
	return &a, nil
}

// PutAsset stores a.
func (r *Registry) PutAsset(a *Asset) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode asset %d: %w", a.ID, err)
	}
	r.st.Set(assetKey(a.ID), data)
	return nil
}

// Sale returns the singleton sale record; a fresh instance starts Closed.
func (r *Registry) Sale() (*Sale, error) {
	data, err := r.st.Get(keySale)
	if errors.Is(err, store.ErrNotFound) {
		return &Sale{Status: SaleClosed}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sale: %w", err)
	}
	var s Sale
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode sale: %w", err)
	}
	return &s, nil
}

// PutSale stores the singleton sale record.
func (r *Registry) PutSale(s *Sale) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode sale: %w", err)
	}
	r.st.Set(keySale, data)
	return nil
}

// AppendReview appends an opaque encrypted review payload to seller's log.
func (r *Registry) AppendReview(seller AccountID, ciphertext []byte) error {
	countKey := prefixReviewCount + string(seller)
	var n uint64
	data, err := r.st.Get(countKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		n = 0
	case err != nil:
		return fmt.Errorf("load review count for %s: %w", seller, err)
	default:
		n = binary.BigEndian.Uint64(data)
	}

	// 20 digits covers the full uint64 range, keeping keys fixed-width.
	r.st.Set(fmt.Sprintf("%s%s:%020d", prefixReview, seller, n), ciphertext)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n+1)
	r.st.Set(countKey, buf[:])
	return nil
}

// Reviews returns all review payloads stored for seller, oldest first.
func (r *Registry) Reviews(seller AccountID) ([][]byte, error) {
	prefix := fmt.Sprintf("%s%s:", prefixReview, seller)
	type entry struct {
		key string
		val []byte
	}
	var entries []entry
	err := r.st.Iterate(prefix, func(key string, val []byte) bool {
		entries = append(entries, entry{key, val})
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan reviews for %s: %w", seller, err)
	}
	// Keys carry a fixed-width sequence number; sort restores append order.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].key > entries[j].key; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
	out := make([][]byte, len(entries))
	for i, e := range entries {
		out[i] = e.val
	}
	return out, nil
}
