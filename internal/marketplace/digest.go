package marketplace

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/zkproof"
)

// Record digests bind proofs to specific ledger records. The controller
// recomputes them from its own state and compares against the public inputs
// a caller submitted, so a proof made for one asset or profile cannot be
// presented for another. RLP gives a canonical byte encoding; MiMC folds it
// into a single field element.

// assetDigestRecord covers the immutable identity of an asset. Owner and
// Purchasable are deliberately excluded: they change over the asset's life
// while proofs produced earlier must stay bindable.
type assetDigestRecord struct {
	ID          uint32
	Name        string
	Description []byte
}

// AssetDigest returns the field element binding proofs to asset a.
func AssetDigest(a *Asset) *big.Int {
	enc, err := rlp.EncodeToBytes(&assetDigestRecord{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
	})
	if err != nil {
		// The record contains only RLP-encodable fields.
		panic(err)
	}
	return zkproof.HashBytes(enc)
}

// SellerDigest returns the field element binding reputation proofs to one
// profile.
func SellerDigest(id AccountID) *big.Int {
	enc, err := rlp.EncodeToBytes(string(id))
	if err != nil {
		panic(err)
	}
	return zkproof.HashBytes(enc)
}
