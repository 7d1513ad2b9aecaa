package zkproof

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
)

// Prover produces proof artifacts for the marketplace computations. It is
// the counterpart of Verifier and lives with the party holding the seller
// secret, never inside the ledger controller.
type Prover struct {
	ccs map[ComputationID]constraint.ConstraintSystem
	pks map[ComputationID]groth16.ProvingKey
}

// NewProver creates a Prover over compiled constraint systems and proving
// keys, one pair per supported computation.
func NewProver(ccs map[ComputationID]constraint.ConstraintSystem, pks map[ComputationID]groth16.ProvingKey) *Prover {
	return &Prover{ccs: ccs, pks: pks}
}

// ProveListing builds a listing proof for the seller identity (sk, nonce)
// over the given asset digest and price. Returns the proof bytes and the
// ordered public-input vector the controller expects.
func (p *Prover) ProveListing(sk, nonce, assetDigest *big.Int, price uint32) ([]byte, []*big.Int, error) {
	commitment := CommitmentFromSecret(sk, nonce)
	nullifier := ListingNullifier(sk, assetDigest)

	assignment := &ListingCircuit{
		Commitment:  commitment,
		Nullifier:   nullifier,
		AssetDigest: assetDigest,
		Price:       big.NewInt(int64(price)),
		Sk:          sk,
		Nonce:       nonce,
	}
	proof, err := p.prove(ComputationListing, assignment)
	if err != nil {
		return nil, nil, err
	}
	publics := []*big.Int{commitment, nullifier, assetDigest, big.NewInt(int64(price))}
	return proof, publics, nil
}

// ProveReputation builds a reputation proof applying delta to the profile
// identified by sellerDigest. increase selects the delta direction; epoch
// scopes the claim so one identity can prove once per aggregation period.
func (p *Prover) ProveReputation(sk, sellerDigest, epoch *big.Int, delta uint32, increase bool) ([]byte, []*big.Int, error) {
	nullifier := ReputationNullifier(sk, sellerDigest, epoch)
	direction := big.NewInt(0)
	if increase {
		direction = big.NewInt(1)
	}

	assignment := &ReputationCircuit{
		Nullifier:    nullifier,
		SellerDigest: sellerDigest,
		Delta:        big.NewInt(int64(delta)),
		Direction:    direction,
		Sk:           sk,
		Epoch:        epoch,
	}
	proof, err := p.prove(ComputationReputation, assignment)
	if err != nil {
		return nil, nil, err
	}
	publics := []*big.Int{nullifier, sellerDigest, big.NewInt(int64(delta)), direction}
	return proof, publics, nil
}

func (p *Prover) prove(id ComputationID, assignment frontend.Circuit) ([]byte, error) {
	ccs, ok := p.ccs[id]
	if !ok {
		return nil, fmt.Errorf("no constraint system for %q", id)
	}
	pk, ok := p.pks[id]
	if !ok {
		return nil, fmt.Errorf("no proving key for %q", id)
	}
	w, err := frontend.NewWitness(assignment, ecc.BW6_761.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("proof marshaling failed: %w", err)
	}
	return buf.Bytes(), nil
}
