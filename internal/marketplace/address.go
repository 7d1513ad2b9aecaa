package marketplace

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// Account ids are base58check-encoded payloads with a human prefix, so a
// mistyped id fails decoding instead of addressing a stranger's profile.

const accountIDPrefix = "mk"

const accountIDVersion = 0x01

// EncodeAccountID encodes an account payload into its canonical string form.
func EncodeAccountID(payload []byte) AccountID {
	return AccountID(accountIDPrefix + base58.CheckEncode(payload, accountIDVersion))
}

// DecodeAccountID validates id and returns the raw payload.
func DecodeAccountID(id AccountID) ([]byte, error) {
	s := string(id)
	if !strings.HasPrefix(s, accountIDPrefix) {
		return nil, fmt.Errorf("account id %q: missing %q prefix", id, accountIDPrefix)
	}
	payload, version, err := base58.CheckDecode(s[len(accountIDPrefix):])
	if err != nil {
		return nil, fmt.Errorf("account id %q: %w", id, err)
	}
	if version != accountIDVersion {
		return nil, fmt.Errorf("account id %q: wrong version: expected(%d), got(%d)", id, accountIDVersion, version)
	}
	return payload, nil
}
