package marketplace

import (
	"github.com/holiman/uint256"
)

// AccountID identifies an account on the underlying ledger.
// The canonical string form is base58check with an "mk" prefix; see
// EncodeAccountID.
type AccountID string

// SaleStatus is the closed set of sale lifecycle states.
type SaleStatus uint8

const (
	SaleClosed SaleStatus = iota
	SaleOnGoing
	SaleCancelled
)

func (s SaleStatus) String() string {
	switch s {
	case SaleClosed:
		return "Closed"
	case SaleOnGoing:
		return "OnGoing"
	case SaleCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// UserProfile is the public record of an account: its reputation score and
// spendable balance. Reputation mutates only through verified reputation
// proofs.
type UserProfile struct {
	Account    AccountID    `json:"account"`
	Reputation uint32       `json:"reputation"`
	Balance    *uint256.Int `json:"balance"`
}

// Asset is a sellable record owned by exactly one account at a time.
// Purchasable toggles true while the asset is on sale.
type Asset struct {
	ID          uint32    `json:"id"`
	Owner       AccountID `json:"owner"`
	Name        string    `json:"name"`
	Description []byte    `json:"description"`
	Purchasable bool      `json:"purchasable"`
}

// Sale is the single active-sale record of a marketplace instance.
type Sale struct {
	Status  SaleStatus `json:"status"`
	Price   uint32     `json:"price"`
	AssetID uint32     `json:"asset_id"`
}
