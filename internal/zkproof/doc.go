// Package zkproof defines the proof contract that gates marketplace state
// transitions.
//
// Overview:
//   - Two private computations are supported, identified by ComputationID:
//     "listing" (a registered seller may place an asset on sale) and
//     "reputation" (a seller may apply an attested reputation delta).
//   - The Verifier is a pure accept/reject function over a proof artifact,
//     an ordered public-input vector, and an expected computation id. It
//     never reports why a proof failed: unknown id, malformed bytes,
//     wrong-length inputs, and cryptographic failure are indistinguishable.
//   - Proofs are Groth16 over BW6-761; commitments, nullifiers, and record
//     digests are MiMC field elements of the same curve's scalar field.
//
// The prover side (Prover, key setup) exists so that tests and the demo
// daemon can produce real artifacts; in a deployment it runs in a separate
// process and only its output is consumed here.
package zkproof
