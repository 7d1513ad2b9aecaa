package marketplace

import (
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/holiman/uint256"

	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/events"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/store"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/zkproof"
)

// Verifier is the proof-verification contract the controller depends on.
// Implementations must be pure: accept or reject, no side effects, no
// information about why a proof failed.
type Verifier interface {
	Verify(id zkproof.ComputationID, proof []byte, publicInputs []*big.Int) bool
}

// Marketplace orchestrates the confidential marketplace: it owns the
// commitment and nullifier sets, the sale singleton, and the registry, and
// drives every state transition behind its proof and state-machine guards.
//
// The ledger host executes one call at a time; the mutex stands in for that
// guarantee when the controller is embedded in an ordinary process. Each
// operation runs against a state snapshot and either commits all of its
// writes or reverts all of them.
type Marketplace struct {
	mu          sync.Mutex
	st          *store.StateDB
	reg         *Registry
	commitments *CommitmentSet
	nullifiers  *NullifierSet
	verifier    Verifier
	emitter     *events.Emitter
}

// New creates a Marketplace over st, gating transitions with verifier and
// reporting state changes through emitter.
func New(st *store.StateDB, verifier Verifier, emitter *events.Emitter) *Marketplace {
	return &Marketplace{
		st:          st,
		reg:         NewRegistry(st),
		commitments: NewCommitmentSet(st),
		nullifiers:  NewNullifierSet(st),
		verifier:    verifier,
		emitter:     emitter,
	}
}

// Bootstrap seeds the initial asset and profile records, mirroring contract
// instantiation. The sale singleton starts Closed implicitly.
func (m *Marketplace) Bootstrap(assets []Asset, users []UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.st.Snapshot()
	for i := range assets {
		if err := m.reg.PutAsset(&assets[i]); err != nil {
			return m.fail(snap, err)
		}
	}
	for i := range users {
		if users[i].Balance == nil {
			users[i].Balance = uint256.NewInt(0)
		}
		if err := m.reg.PutProfile(&users[i]); err != nil {
			return m.fail(snap, err)
		}
	}
	return m.commit(snap)
}

// RegisterSeller inserts a seller commitment into the commitment set.
// Registration is silent (no event) and idempotent; it fails only on a
// storage fault.
func (m *Marketplace) RegisterSeller(commitment *big.Int) error {
	if commitment == nil {
		return fmt.Errorf("nil commitment")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.st.Snapshot()
	if err := m.commitments.Register(commitment); err != nil {
		return m.fail(snap, err)
	}
	return m.commit(snap)
}

// ListAsset places asset assetID on sale at price, authorized by a listing
// proof. Guard order is load-bearing: sale state, commitment registration,
// proof verification, then nullifier consumption; only then does state
// mutate. Any failure leaves the sale, the asset, and the nullifier set
// untouched.
func (m *Marketplace) ListAsset(assetID, price uint32, seller AccountID, proof []byte, publicInputs []*big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.st.Snapshot()

	sale, err := m.reg.Sale()
	if err != nil {
		return m.fail(snap, err)
	}
	if sale.Status == SaleOnGoing {
		return m.fail(snap, ErrSaleTransition)
	}
	asset, err := m.reg.Asset(assetID)
	if err != nil {
		return m.fail(snap, err)
	}
	if asset.Purchasable {
		return m.fail(snap, ErrSaleTransition)
	}

	if len(publicInputs) != zkproof.ListingInputLen {
		return m.fail(snap, ErrInvalidProof)
	}
	for _, in := range publicInputs {
		if in == nil {
			return m.fail(snap, ErrInvalidProof)
		}
	}

	// The caller previously registered: their commitment must be a member.
	registered, err := m.commitments.Contains(publicInputs[zkproof.ListingInputCommitment])
	if err != nil {
		return m.fail(snap, err)
	}
	if !registered {
		return m.fail(snap, ErrNotRegistered)
	}

	// Bind the statement to on-ledger state before verifying.
	if AssetDigest(asset).Cmp(publicInputs[zkproof.ListingInputAsset]) != 0 {
		return m.fail(snap, ErrInvalidProof)
	}
	if publicInputs[zkproof.ListingInputPrice].Cmp(new(big.Int).SetUint64(uint64(price))) != 0 {
		return m.fail(snap, ErrInvalidProof)
	}
	if !m.verifier.Verify(zkproof.ComputationListing, proof, publicInputs) {
		return m.fail(snap, ErrInvalidProof)
	}

	fresh, err := m.nullifiers.TryConsume(publicInputs[zkproof.ListingInputNullifier])
	if err != nil {
		return m.fail(snap, err)
	}
	if !fresh {
		return m.fail(snap, ErrNullifierSpent)
	}

	asset.Purchasable = true
	if err := m.reg.PutAsset(asset); err != nil {
		return m.fail(snap, err)
	}
	if err := sale.open(assetID, price); err != nil {
		return m.fail(snap, err)
	}
	if err := m.reg.PutSale(sale); err != nil {
		return m.fail(snap, err)
	}
	if err := m.commit(snap); err != nil {
		return err
	}

	m.emitter.Emit(events.Event{
		Type: events.EventItemOnSale,
		Data: map[string]any{"seller_id": string(seller), "asset_id": assetID, "price": price},
	})
	return nil
}

// BuyAsset completes the ongoing sale of assetID: the buyer pays the listed
// price, ownership transfers, and the sale closes — atomically.
func (m *Marketplace) BuyAsset(assetID uint32, buyer AccountID, price uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.st.Snapshot()

	sale, err := m.reg.Sale()
	if err != nil {
		return m.fail(snap, err)
	}
	if sale.Status != SaleOnGoing || sale.AssetID != assetID {
		return m.fail(snap, ErrSaleTransition)
	}
	if price != sale.Price {
		return m.fail(snap, ErrPriceMismatch)
	}

	asset, err := m.reg.Asset(assetID)
	if err != nil {
		return m.fail(snap, err)
	}
	buyerProfile, err := m.reg.Profile(buyer)
	if err != nil {
		return m.fail(snap, err)
	}
	cost := uint256.NewInt(uint64(price))
	if buyerProfile.Balance.Lt(cost) {
		return m.fail(snap, ErrInsufficientFunds)
	}
	sellerProfile, err := m.reg.Profile(asset.Owner)
	if err != nil {
		return m.fail(snap, err)
	}

	// Funds move with ownership; a failure after this point reverts both.
	buyerProfile.Balance = new(uint256.Int).Sub(buyerProfile.Balance, cost)
	if asset.Owner == buyer {
		sellerProfile = buyerProfile
	}
	sellerProfile.Balance = new(uint256.Int).Add(sellerProfile.Balance, cost)
	asset.Owner = buyer
	asset.Purchasable = false
	if err := sale.complete(assetID); err != nil {
		return m.fail(snap, err)
	}

	if err := m.reg.PutProfile(buyerProfile); err != nil {
		return m.fail(snap, err)
	}
	if err := m.reg.PutProfile(sellerProfile); err != nil {
		return m.fail(snap, err)
	}
	if err := m.reg.PutAsset(asset); err != nil {
		return m.fail(snap, err)
	}
	if err := m.reg.PutSale(sale); err != nil {
		return m.fail(snap, err)
	}
	if err := m.commit(snap); err != nil {
		return err
	}

	m.emitter.Emit(events.Event{
		Type: events.EventItemBought,
		Data: map[string]any{"account_id": string(buyer), "asset_id": assetID, "price": price},
	})
	return nil
}

// CancelSale withdraws the ongoing sale of assetID. Only the asset owner
// may cancel. A cancelled sale accepts the next listing.
func (m *Marketplace) CancelSale(assetID uint32, caller AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.st.Snapshot()

	sale, err := m.reg.Sale()
	if err != nil {
		return m.fail(snap, err)
	}
	if sale.Status != SaleOnGoing || sale.AssetID != assetID {
		return m.fail(snap, ErrSaleTransition)
	}
	asset, err := m.reg.Asset(assetID)
	if err != nil {
		return m.fail(snap, err)
	}
	if asset.Owner != caller {
		return m.fail(snap, ErrNotOwner)
	}

	asset.Purchasable = false
	if err := m.reg.PutAsset(asset); err != nil {
		return m.fail(snap, err)
	}
	if err := sale.cancel(assetID); err != nil {
		return m.fail(snap, err)
	}
	if err := m.reg.PutSale(sale); err != nil {
		return m.fail(snap, err)
	}
	if err := m.commit(snap); err != nil {
		return err
	}

	m.emitter.Emit(events.Event{
		Type: events.EventSaleCancelled,
		Data: map[string]any{"seller_id": string(caller), "asset_id": assetID},
	})
	return nil
}

// SubmitReputationProof applies a proof-attested reputation delta to
// seller's profile. The delta saturates: reputation never leaves
// [0, math.MaxUint32]. The proof's nullifier is consumed; a replay is
// rejected with ErrNullifierSpent and leaves reputation unchanged.
func (m *Marketplace) SubmitReputationProof(seller AccountID, proof []byte, publicInputs []*big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.st.Snapshot()

	if len(publicInputs) != zkproof.ReputationInputLen {
		return m.fail(snap, ErrInvalidProof)
	}
	for _, in := range publicInputs {
		if in == nil {
			return m.fail(snap, ErrInvalidProof)
		}
	}
	// The proof must target exactly this profile.
	if SellerDigest(seller).Cmp(publicInputs[zkproof.ReputationInputSeller]) != 0 {
		return m.fail(snap, ErrInvalidProof)
	}
	delta := publicInputs[zkproof.ReputationInputDelta]
	direction := publicInputs[zkproof.ReputationInputDirection]
	if !delta.IsUint64() || delta.Uint64() > math.MaxUint32 {
		return m.fail(snap, ErrInvalidProof)
	}
	if direction.Cmp(big.NewInt(0)) != 0 && direction.Cmp(big.NewInt(1)) != 0 {
		return m.fail(snap, ErrInvalidProof)
	}
	if !m.verifier.Verify(zkproof.ComputationReputation, proof, publicInputs) {
		return m.fail(snap, ErrInvalidProof)
	}

	fresh, err := m.nullifiers.TryConsume(publicInputs[zkproof.ReputationInputNullifier])
	if err != nil {
		return m.fail(snap, err)
	}
	if !fresh {
		return m.fail(snap, ErrNullifierSpent)
	}

	profile, err := m.reg.Profile(seller)
	if err != nil {
		return m.fail(snap, err)
	}
	profile.Reputation = applyReputationDelta(profile.Reputation, uint32(delta.Uint64()), direction.Sign() == 1)
	if err := m.reg.PutProfile(profile); err != nil {
		return m.fail(snap, err)
	}
	if err := m.commit(snap); err != nil {
		return err
	}

	m.emitter.Emit(events.Event{
		Type: events.EventReputationUpdated,
		Data: map[string]any{"seller_id": string(seller), "new_score": profile.Reputation},
	})
	return nil
}

// applyReputationDelta saturates at both ends of the u32 range.
func applyReputationDelta(current, delta uint32, increase bool) uint32 {
	if increase {
		sum := uint64(current) + uint64(delta)
		if sum > math.MaxUint32 {
			return math.MaxUint32
		}
		return uint32(sum)
	}
	if delta > current {
		return 0
	}
	return current - delta
}

// SubmitReview appends an opaque encrypted review payload to seller's log.
// Reviews are bookkeeping: they mutate no reputation and consume no
// nullifier. Reputation changes only through SubmitReputationProof, which
// attests an off-ledger aggregation of these payloads.
func (m *Marketplace) SubmitReview(seller AccountID, ciphertext []byte) error {
	if len(ciphertext) == 0 {
		return fmt.Errorf("empty review payload")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.st.Snapshot()
	if err := m.reg.AppendReview(seller, ciphertext); err != nil {
		return m.fail(snap, err)
	}
	if err := m.commit(snap); err != nil {
		return err
	}

	m.emitter.Emit(events.Event{
		Type: events.EventReviewReceived,
		Data: map[string]any{"seller_id": string(seller)},
	})
	return nil
}

// commit flushes the operation's writes. A storage fault aborts the
// operation like any other guard failure: the snapshot is reverted so the
// buffered writes cannot ride along with a later operation's commit.
func (m *Marketplace) commit(snap int) error {
	if err := m.st.Commit(); err != nil {
		return m.fail(snap, err)
	}
	return nil
}

// fail reverts the operation's snapshot and returns err. Revert can only
// fail on a programming error (bad snapshot id), which must not mask the
// original failure.
func (m *Marketplace) fail(snap int, err error) error {
	if rerr := m.st.RevertToSnapshot(snap); rerr != nil {
		return fmt.Errorf("%w (revert failed: %v)", err, rerr)
	}
	return err
}

// ---- Read-only queries ----

// Asset returns the asset record for id.
func (m *Marketplace) Asset(id uint32) (*Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Asset(id)
}

// Profile returns the profile for id (zero-value if absent).
func (m *Marketplace) Profile(id AccountID) (*UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Profile(id)
}

// CurrentSale returns the sale singleton.
func (m *Marketplace) CurrentSale() (*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Sale()
}

// IsRegistered reports membership of commitment in the commitment set.
func (m *Marketplace) IsRegistered(commitment *big.Int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commitments.Contains(commitment)
}

// NullifierSpent reports whether nf has been consumed. Diagnostics only.
func (m *Marketplace) NullifierSpent(nf *big.Int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nullifiers.Contains(nf)
}

// Reviews returns seller's stored review payloads, oldest first.
func (m *Marketplace) Reviews(seller AccountID) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Reviews(seller)
}
