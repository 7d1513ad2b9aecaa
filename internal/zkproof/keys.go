package zkproof

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// circuitFor returns a fresh circuit skeleton for the computation id.
func circuitFor(id ComputationID) (frontend.Circuit, error) {
	switch id {
	case ComputationListing:
		return &ListingCircuit{}, nil
	case ComputationReputation:
		return &ReputationCircuit{}, nil
	default:
		return nil, fmt.Errorf("unknown computation %q", id)
	}
}

// Compile compiles the constraint system for the computation id.
func Compile(id ComputationID) (constraint.ConstraintSystem, error) {
	circuit, err := circuitFor(id)
	if err != nil {
		return nil, err
	}
	ccs, err := frontend.Compile(ecc.BW6_761.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("compile %s circuit: %w", id, err)
	}
	return ccs, nil
}

// SaveProvingKey saves a Groth16 proving key to disk.
func SaveProvingKey(path string, pk groth16.ProvingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = pk.WriteTo(f)
	return err
}

// SaveVerifyingKey saves a Groth16 verifying key to disk.
func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = vk.WriteTo(f)
	return err
}

// LoadProvingKey loads a Groth16 proving key from disk.
func LoadProvingKey(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BW6_761)
	_, err = pk.ReadFrom(f)
	return pk, err
}

// LoadVerifyingKey loads a Groth16 verifying key from disk.
func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BW6_761)
	_, err = vk.ReadFrom(f)
	return vk, err
}

// SetupOrLoadKeys generates or loads Groth16 keys for one computation.
// If both key files exist under keyDir, loads them; otherwise runs setup
// and saves the fresh keys.
func SetupOrLoadKeys(id ComputationID, ccs constraint.ConstraintSystem, keyDir string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	if err := os.MkdirAll(keyDir, 0755); err != nil {
		return nil, nil, err
	}
	pkPath := filepath.Join(keyDir, fmt.Sprintf("%s_pk.bin", id))
	vkPath := filepath.Join(keyDir, fmt.Sprintf("%s_vk.bin", id))

	pk, pkErr := LoadProvingKey(pkPath)
	vk, vkErr := LoadVerifyingKey(vkPath)
	if pkErr == nil && vkErr == nil {
		return pk, vk, nil
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("groth16 setup for %s: %w", id, err)
	}
	if err := SaveProvingKey(pkPath, pk); err != nil {
		return nil, nil, err
	}
	if err := SaveVerifyingKey(vkPath, vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}
