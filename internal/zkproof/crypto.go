// crypto.go - Native (off-circuit) MiMC primitives shared by the prover,
// the verifier-side digest helpers, and tests.
//
// Every value hashed here is first reduced into the BW6-761 scalar field
// and written in canonical form, so the native sums match the in-circuit
// MiMC gadget exactly.

package zkproof

import (
	"math/big"

	bw6761fr "github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// mimcSum hashes the given field values with native MiMC.
func mimcSum(inputs ...*big.Int) *big.Int {
	h := mimcNative.NewMiMC()
	for _, in := range inputs {
		var el bw6761fr.Element
		el.SetBigInt(new(big.Int).Mod(in, bw6761fr.Modulus()))
		b := el.Bytes()
		h.Write(b[:])
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

// CommitmentFromSecret derives the registration commitment cm = H(sk, nonce).
// Sellers compute this off-ledger and register only the commitment.
func CommitmentFromSecret(sk, nonce *big.Int) *big.Int {
	return mimcSum(sk, nonce)
}

// ListingNullifier derives the nullifier that marks a listing claim as
// consumed: nf = H(sk, assetDigest). Deterministic per (secret, asset), so a
// seller cannot list the same asset twice off one claim.
func ListingNullifier(sk, assetDigest *big.Int) *big.Int {
	return mimcSum(sk, assetDigest)
}

// ReputationNullifier derives the nullifier for a reputation claim:
// nf = H(sk, sellerDigest, epoch). Binding the seller digest in prevents a
// proof produced for one profile from being replayed against another.
func ReputationNullifier(sk, sellerDigest, epoch *big.Int) *big.Int {
	return mimcSum(sk, sellerDigest, epoch)
}

// HashBytes digests an arbitrary byte string into a single field element by
// hashing 32-byte chunks. Used to bind encoded ledger records (assets,
// seller ids) into public inputs.
func HashBytes(data []byte) *big.Int {
	var chunks []*big.Int
	for len(data) > 0 {
		n := len(data)
		if n > 32 {
			n = 32
		}
		chunks = append(chunks, new(big.Int).SetBytes(data[:n]))
		data = data[n:]
	}
	if len(chunks) == 0 {
		chunks = []*big.Int{big.NewInt(0)}
	}
	return mimcSum(chunks...)
}

// RandomScalar returns a uniformly random element of the scalar field.
// Use this for all secret and nonce material.
func RandomScalar() *big.Int {
	var el bw6761fr.Element
	if _, err := el.SetRandom(); err != nil {
		panic(err)
	}
	return el.BigInt(new(big.Int))
}
