package zkproof

import (
	"math/big"
	"sync"
	"testing"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
)

// Compiling the circuits and running the trusted setup dominates the suite's
// runtime, so it happens once and every test shares the artifacts.
var (
	setupOnce sync.Once
	setupErr  error
	prover    *Prover
	verifier  *Verifier
)

func sharedSetup(t *testing.T) (*Prover, *Verifier) {
	t.Helper()
	setupOnce.Do(func() {
		ccs := make(map[ComputationID]constraint.ConstraintSystem)
		pks := make(map[ComputationID]groth16.ProvingKey)
		vks := make(map[ComputationID]groth16.VerifyingKey)
		for _, id := range []ComputationID{ComputationListing, ComputationReputation} {
			cs, err := Compile(id)
			if err != nil {
				setupErr = err
				return
			}
			pk, vk, err := groth16.Setup(cs)
			if err != nil {
				setupErr = err
				return
			}
			ccs[id] = cs
			pks[id] = pk
			vks[id] = vk
		}
		prover = NewProver(ccs, pks)
		verifier = NewVerifier(vks)
	})
	if setupErr != nil {
		t.Fatalf("circuit setup failed: %v", setupErr)
	}
	return prover, verifier
}

func TestHashHelpers(t *testing.T) {
	t.Run("commitment determinism", func(t *testing.T) {
		sk := big.NewInt(12345)
		nonce := big.NewInt(67890)
		if CommitmentFromSecret(sk, nonce).Cmp(CommitmentFromSecret(sk, nonce)) != 0 {
			t.Error("commitment is not deterministic")
		}
		if CommitmentFromSecret(sk, nonce).Cmp(CommitmentFromSecret(sk, big.NewInt(67891))) == 0 {
			t.Error("distinct nonces produced the same commitment")
		}
	})

	t.Run("nullifier separation", func(t *testing.T) {
		sk := RandomScalar()
		d1 := big.NewInt(100)
		d2 := big.NewInt(200)
		if ListingNullifier(sk, d1).Cmp(ListingNullifier(sk, d2)) == 0 {
			t.Error("distinct contexts produced the same nullifier")
		}
		if ListingNullifier(sk, d1).Cmp(ListingNullifier(RandomScalar(), d1)) == 0 {
			t.Error("distinct secrets produced the same nullifier")
		}
	})

	t.Run("HashBytes determinism", func(t *testing.T) {
		a := HashBytes([]byte("some record"))
		b := HashBytes([]byte("some record"))
		c := HashBytes([]byte("other record"))
		if a.Cmp(b) != 0 {
			t.Error("HashBytes is not deterministic")
		}
		if a.Cmp(c) == 0 {
			t.Error("HashBytes collision on distinct inputs")
		}
	})

	t.Run("RandomScalar uniqueness", func(t *testing.T) {
		if RandomScalar().Cmp(RandomScalar()) == 0 {
			t.Error("two random scalars collided")
		}
	})
}

func TestListingProofRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Groth16 round trip in short mode")
	}
	p, v := sharedSetup(t)

	sk := RandomScalar()
	nonce := RandomScalar()
	assetDigest := HashBytes([]byte("asset-one"))

	proof, publics, err := p.ProveListing(sk, nonce, assetDigest, 90)
	if err != nil {
		t.Fatalf("ProveListing failed: %v", err)
	}
	if len(publics) != ListingInputLen {
		t.Fatalf("expected %d public inputs, got %d", ListingInputLen, len(publics))
	}
	if publics[ListingInputCommitment].Cmp(CommitmentFromSecret(sk, nonce)) != 0 {
		t.Error("public commitment does not match the native hash")
	}
	if publics[ListingInputNullifier].Cmp(ListingNullifier(sk, assetDigest)) != 0 {
		t.Error("public nullifier does not match the native hash")
	}

	if !v.Verify(ComputationListing, proof, publics) {
		t.Fatal("valid listing proof rejected")
	}

	t.Run("tampered public input", func(t *testing.T) {
		bad := append([]*big.Int{}, publics...)
		bad[ListingInputPrice] = big.NewInt(91)
		if v.Verify(ComputationListing, proof, bad) {
			t.Error("proof accepted with altered price")
		}
	})

	t.Run("tampered proof bytes", func(t *testing.T) {
		bad := append([]byte{}, proof...)
		bad[0] ^= 0xff
		if v.Verify(ComputationListing, bad, publics) {
			t.Error("tampered proof accepted")
		}
	})

	t.Run("truncated proof bytes", func(t *testing.T) {
		if v.Verify(ComputationListing, proof[:16], publics) {
			t.Error("truncated proof accepted")
		}
	})

	t.Run("wrong computation id", func(t *testing.T) {
		if v.Verify(ComputationReputation, proof, publics) {
			t.Error("listing proof accepted under the reputation computation")
		}
		if v.Verify(ComputationID("unknown"), proof, publics) {
			t.Error("unknown computation id accepted")
		}
	})
}

func TestReputationProofRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Groth16 round trip in short mode")
	}
	p, v := sharedSetup(t)

	sk := RandomScalar()
	epoch := big.NewInt(7)
	sellerDigest := HashBytes([]byte("seller-profile"))

	proof, publics, err := p.ProveReputation(sk, sellerDigest, epoch, 5, true)
	if err != nil {
		t.Fatalf("ProveReputation failed: %v", err)
	}
	if len(publics) != ReputationInputLen {
		t.Fatalf("expected %d public inputs, got %d", ReputationInputLen, len(publics))
	}
	if publics[ReputationInputDirection].Sign() != 1 {
		t.Error("increase proof carried direction 0")
	}

	if !v.Verify(ComputationReputation, proof, publics) {
		t.Fatal("valid reputation proof rejected")
	}

	t.Run("decrease direction", func(t *testing.T) {
		proof2, publics2, err := p.ProveReputation(sk, sellerDigest, big.NewInt(8), 3, false)
		if err != nil {
			t.Fatalf("ProveReputation failed: %v", err)
		}
		if publics2[ReputationInputDirection].Sign() != 0 {
			t.Error("decrease proof carried direction 1")
		}
		if !v.Verify(ComputationReputation, proof2, publics2) {
			t.Error("valid decrease proof rejected")
		}
	})

	t.Run("flipped direction", func(t *testing.T) {
		bad := append([]*big.Int{}, publics...)
		bad[ReputationInputDirection] = big.NewInt(0)
		if v.Verify(ComputationReputation, proof, bad) {
			t.Error("proof accepted with flipped direction")
		}
	})

	t.Run("different epochs give different nullifiers", func(t *testing.T) {
		nf7 := ReputationNullifier(sk, sellerDigest, big.NewInt(7))
		nf8 := ReputationNullifier(sk, sellerDigest, big.NewInt(8))
		if nf7.Cmp(nf8) == 0 {
			t.Error("epoch does not scope the reputation nullifier")
		}
	})
}

func TestVerifierInputValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Groth16 round trip in short mode")
	}
	p, v := sharedSetup(t)

	proof, publics, err := p.ProveListing(RandomScalar(), RandomScalar(), HashBytes([]byte("x")), 10)
	if err != nil {
		t.Fatalf("ProveListing failed: %v", err)
	}

	cases := []struct {
		name   string
		id     ComputationID
		proof  []byte
		inputs []*big.Int
	}{
		{"nil proof", ComputationListing, nil, publics},
		{"empty inputs", ComputationListing, proof, nil},
		{"short inputs", ComputationListing, proof, publics[:2]},
		{"long inputs", ComputationListing, proof, append(append([]*big.Int{}, publics...), big.NewInt(1))},
		{"nil input element", ComputationListing, proof, []*big.Int{publics[0], nil, publics[2], publics[3]}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if v.Verify(tc.id, tc.proof, tc.inputs) {
				t.Error("malformed verification request accepted")
			}
		})
	}
}
