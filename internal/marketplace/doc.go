// Package marketplace implements a confidential marketplace ledger.
//
// Overview:
//   - Sellers register anonymously by publishing cryptographic commitments;
//     the secret identity behind a commitment is never revealed on-ledger
//   - Every mutating action (listing an asset, updating reputation) is
//     authorized by a zero-knowledge proof instead of a capability check
//   - Nullifiers record consumed claims so no proof can be replayed
//   - A single sale is active per marketplace instance; its lifecycle is a
//     closed state machine (Closed, OnGoing, Cancelled)
//
// Security model:
//   - Commitments and nullifiers are MiMC field elements; derivations live
//     in the zkproof package alongside the circuits that constrain them
//   - The controller recomputes every public input from ledger state before
//     verification, so proofs are bound, not trusted-from-caller
//   - Operations are all-or-nothing: guards run against a state snapshot
//     and any failure reverts every buffered write, including nullifier
//     consumption
package marketplace
