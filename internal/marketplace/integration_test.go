package marketplace_test

import (
	"testing"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/events"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/marketplace"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/store"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/testutil"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/zkproof"
)

// End-to-end listing with a real Groth16 proof instead of the scripted
// verifier: prove off-ledger, register the commitment, list, buy, and
// confirm the replay is rejected.
func TestListAssetWithRealProof(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Groth16 setup in short mode")
	}

	ccs, err := zkproof.Compile(zkproof.ComputationListing)
	require.NoError(t, err)
	pk, vk, err := groth16.Setup(ccs)
	require.NoError(t, err)

	prover := zkproof.NewProver(
		map[zkproof.ComputationID]constraint.ConstraintSystem{zkproof.ComputationListing: ccs},
		map[zkproof.ComputationID]groth16.ProvingKey{zkproof.ComputationListing: pk},
	)
	verifier := zkproof.NewVerifier(
		map[zkproof.ComputationID]groth16.VerifyingKey{zkproof.ComputationListing: vk},
	)

	mkt := marketplace.New(store.NewStateDB(testutil.NewMemDB()), verifier, events.NewEmitter())
	require.NoError(t, mkt.Bootstrap(
		[]marketplace.Asset{{ID: 1, Owner: alice, Name: "lantern", Description: []byte("brass")}},
		[]marketplace.UserProfile{
			{Account: alice, Balance: uint256.NewInt(100)},
			{Account: bob, Balance: uint256.NewInt(100)},
		},
	))

	asset, err := mkt.Asset(1)
	require.NoError(t, err)

	sk := zkproof.RandomScalar()
	nonce := zkproof.RandomScalar()
	require.NoError(t, mkt.RegisterSeller(zkproof.CommitmentFromSecret(sk, nonce)))

	proof, publics, err := prover.ProveListing(sk, nonce, marketplace.AssetDigest(asset), 40)
	require.NoError(t, err)

	// A listing at some other price must not pass even with a real proof.
	err = mkt.ListAsset(1, 41, alice, proof, publics)
	require.ErrorIs(t, err, marketplace.ErrInvalidProof)

	require.NoError(t, mkt.ListAsset(1, 40, alice, proof, publics))
	require.NoError(t, mkt.BuyAsset(1, bob, 40))

	asset, err = mkt.Asset(1)
	require.NoError(t, err)
	require.Equal(t, bob, asset.Owner)

	// The proof is one-shot: the consumed nullifier blocks a second listing.
	err = mkt.ListAsset(1, 40, bob, proof, publics)
	require.ErrorIs(t, err, marketplace.ErrNullifierSpent)
}
