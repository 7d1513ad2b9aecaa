package zkproof

import (
	"bytes"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
)

// ComputationID identifies which private computation a proof attests to.
type ComputationID string

const (
	// ComputationListing gates placing an asset on sale.
	ComputationListing ComputationID = "listing"
	// ComputationReputation gates applying a reputation delta.
	ComputationReputation ComputationID = "reputation"
)

// Public-input vector lengths per computation.
const (
	ListingInputLen    = 4
	ReputationInputLen = 4
)

// Listing public-input positions.
const (
	ListingInputCommitment = 0
	ListingInputNullifier  = 1
	ListingInputAsset      = 2
	ListingInputPrice      = 3
)

// Reputation public-input positions.
const (
	ReputationInputNullifier = 0
	ReputationInputSeller    = 1
	ReputationInputDelta     = 2
	ReputationInputDirection = 3
)

// Verifier checks proof artifacts against per-computation verifying keys.
// It is side-effect free and safe for concurrent use once constructed.
type Verifier struct {
	vks map[ComputationID]groth16.VerifyingKey
}

// NewVerifier creates a Verifier over the given verifying keys.
func NewVerifier(vks map[ComputationID]groth16.VerifyingKey) *Verifier {
	keys := make(map[ComputationID]groth16.VerifyingKey, len(vks))
	for id, vk := range vks {
		keys[id] = vk
	}
	return &Verifier{vks: keys}
}

// Verify reports whether proof is a valid Groth16 proof for the named
// computation over exactly the given public inputs. The inputs are treated
// as bound: the caller recomputes them from ledger state, and a proof made
// for different values will not verify.
//
// All failure modes return false. A caller learns nothing about why a proof
// was rejected.
func (v *Verifier) Verify(id ComputationID, proof []byte, publicInputs []*big.Int) (ok bool) {
	// Malformed artifacts must never escape as panics.
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	vk, known := v.vks[id]
	if !known {
		return false
	}

	assignment, valid := publicAssignment(id, publicInputs)
	if !valid {
		return false
	}
	w, err := frontend.NewWitness(assignment, ecc.BW6_761.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false
	}

	p := groth16.NewProof(ecc.BW6_761)
	if _, err := p.ReadFrom(bytes.NewReader(proof)); err != nil {
		return false
	}

	return groth16.Verify(p, vk, w) == nil
}

// publicAssignment maps an ordered public-input vector onto the circuit
// struct for id. Returns false on a wrong-length vector or unknown id.
func publicAssignment(id ComputationID, in []*big.Int) (frontend.Circuit, bool) {
	for _, v := range in {
		if v == nil {
			return nil, false
		}
	}
	switch id {
	case ComputationListing:
		if len(in) != ListingInputLen {
			return nil, false
		}
		return &ListingCircuit{
			Commitment:  in[ListingInputCommitment],
			Nullifier:   in[ListingInputNullifier],
			AssetDigest: in[ListingInputAsset],
			Price:       in[ListingInputPrice],
		}, true
	case ComputationReputation:
		if len(in) != ReputationInputLen {
			return nil, false
		}
		return &ReputationCircuit{
			Nullifier:    in[ReputationInputNullifier],
			SellerDigest: in[ReputationInputSeller],
			Delta:        in[ReputationInputDelta],
			Direction:    in[ReputationInputDirection],
		}, true
	default:
		return nil, false
	}
}
