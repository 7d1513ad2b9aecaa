// Package reviews provides the client-side sealing of review payloads.
//
// The ledger stores reviews as opaque ciphertexts tied to a seller; only the
// off-ledger aggregator holding the review key can open them. The core never
// decrypts a review.
package reviews

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Seal encrypts plaintext for the aggregator using ChaCha20-Poly1305 with a
// random nonce. sellerID is authenticated as associated data, so a sealed
// review cannot be replayed against a different seller's log. The nonce is
// prepended to the returned ciphertext.
func Seal(key []byte, sellerID string, plaintext []byte) ([]byte, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be %d bytes", chacha20poly1305.KeySize)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 AEAD: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := aead.Seal(nonce, nonce, plaintext, []byte(sellerID))
	return sealed, nil
}

// Open decrypts a sealed review. It fails if the key is wrong, the payload
// was tampered with, or the payload was sealed for a different seller.
func Open(key []byte, sellerID string, sealed []byte) ([]byte, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be %d bytes", chacha20poly1305.KeySize)
	}
	if len(sealed) < chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("sealed payload too short")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 AEAD: %w", err)
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSize], sealed[chacha20poly1305.NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(sellerID))
	if err != nil {
		// Wrong key/seller or tampered ciphertext; indistinguishable on purpose.
		return nil, fmt.Errorf("failed to open review: %w", err)
	}
	return plaintext, nil
}

// NewKey generates a fresh 32-byte review key.
func NewKey() []byte {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return key
}
