package zkproof

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// ReputationCircuit proves that a seller is entitled to apply a bounded
// reputation delta to their own profile, without revealing which reviews
// back the claim.
//
// Public inputs:
//   - Nullifier: H(sk, sellerDigest, epoch); consumed by the controller
//   - SellerDigest: digest of the target profile's account id, binding the
//     proof to exactly one profile
//   - Delta: the attested reputation change magnitude (u32)
//   - Direction: 1 to increase reputation, 0 to decrease
type ReputationCircuit struct {
	Nullifier    frontend.Variable `gnark:",public"`
	SellerDigest frontend.Variable `gnark:",public"`
	Delta        frontend.Variable `gnark:",public"`
	Direction    frontend.Variable `gnark:",public"`

	// Private inputs
	Sk    frontend.Variable
	Epoch frontend.Variable
}

func (c *ReputationCircuit) Define(api frontend.API) error {
	// nf = H(sk, sellerDigest, epoch): one claim per (identity, profile, epoch)
	hasher, _ := mimc.NewMiMC(api)
	hasher.Write(c.Sk)
	hasher.Write(c.SellerDigest)
	hasher.Write(c.Epoch)
	api.AssertIsEqual(c.Nullifier, hasher.Sum())

	// Delta must fit in 32 bits; direction is a flag
	api.ToBinary(c.Delta, 32)
	api.AssertIsBoolean(c.Direction)

	return nil
}
