package marketplace

import "errors"

// Every guard failure surfaces as one of these sentinels (possibly wrapped
// with context). Storage faults are wrapped store errors and abort the
// operation; nothing fails silently.
var (
	// ErrInvalidProof covers verifier rejection and any public-input
	// binding mismatch. Callers cannot distinguish the two.
	ErrInvalidProof = errors.New("marketplace: invalid proof")

	// ErrNullifierSpent marks a replay: the claim behind this proof was
	// already consumed.
	ErrNullifierSpent = errors.New("marketplace: nullifier already spent")

	// ErrNotRegistered means the presented commitment is not in the
	// commitment set.
	ErrNotRegistered = errors.New("marketplace: seller commitment not registered")

	// ErrSaleTransition rejects an operation the sale state machine does
	// not allow, e.g. listing while a sale is ongoing or buying a closed
	// sale.
	ErrSaleTransition = errors.New("marketplace: invalid sale transition")

	// ErrInsufficientFunds rejects a purchase the buyer cannot cover.
	ErrInsufficientFunds = errors.New("marketplace: insufficient funds")

	// ErrPriceMismatch rejects a purchase at other than the listed price.
	ErrPriceMismatch = errors.New("marketplace: price mismatch")

	// ErrNotOwner rejects a cancellation from anyone but the asset owner.
	ErrNotOwner = errors.New("marketplace: caller does not own the asset")

	// ErrAssetNotFound means the referenced asset record does not exist.
	ErrAssetNotFound = errors.New("marketplace: asset not found")
)
