package zkproof

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// ListingCircuit proves that the caller owns a registered seller identity
// and is entitled to place exactly one listing claim for a specific asset.
//
// Public inputs (witness order is the public-input order of the contract):
//   - Commitment: the registration commitment H(sk, nonce); the controller
//     separately checks its membership in the commitment set
//   - Nullifier: H(sk, assetDigest); consumed by the controller
//   - AssetDigest: digest of the asset record being listed
//   - Price: the asking price, bound into the statement
type ListingCircuit struct {
	Commitment  frontend.Variable `gnark:",public"`
	Nullifier   frontend.Variable `gnark:",public"`
	AssetDigest frontend.Variable `gnark:",public"`
	Price       frontend.Variable `gnark:",public"`

	// Private inputs
	Sk    frontend.Variable
	Nonce frontend.Variable
}

func (c *ListingCircuit) Define(api frontend.API) error {
	// Commitment opens to the secret identity: cm = H(sk, nonce)
	cm := circuitPRF(api, c.Sk, c.Nonce)
	api.AssertIsEqual(c.Commitment, cm)

	// Nullifier binds the claim to this asset: nf = H(sk, assetDigest)
	nf := circuitPRF(api, c.Sk, c.AssetDigest)
	api.AssertIsEqual(c.Nullifier, nf)

	// Price must fit in 32 bits
	api.ToBinary(c.Price, 32)

	return nil
}

// circuitPRF implements the protocol PRF using MiMC hash in the circuit.
func circuitPRF(api frontend.API, sk, x frontend.Variable) frontend.Variable {
	hasher, _ := mimc.NewMiMC(api)
	hasher.Write(sk)
	hasher.Write(x)
	return hasher.Sum()
}
