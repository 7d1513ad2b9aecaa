package marketplace

// The sale state machine. At most one sale is OnGoing per marketplace
// instance; the single Sale record encodes that capacity explicitly.
// Transitions:
//
//	Closed/Cancelled --list--> OnGoing --buy--> Closed
//	                           OnGoing --cancel--> Cancelled
//
// All transition methods mutate the receiver only after their guard passes
// and return ErrSaleTransition otherwise.

// open transitions the sale to OnGoing for assetID at price.
func (s *Sale) open(assetID, price uint32) error {
	if s.Status == SaleOnGoing {
		return ErrSaleTransition
	}
	s.Status = SaleOnGoing
	s.AssetID = assetID
	s.Price = price
	return nil
}

// complete transitions an ongoing sale of assetID back to Closed.
func (s *Sale) complete(assetID uint32) error {
	if s.Status != SaleOnGoing || s.AssetID != assetID {
		return ErrSaleTransition
	}
	s.Status = SaleClosed
	return nil
}

// cancel transitions an ongoing sale of assetID to Cancelled. A cancelled
// sale accepts the next listing just as a closed one does.
func (s *Sale) cancel(assetID uint32) error {
	if s.Status != SaleOnGoing || s.AssetID != assetID {
		return ErrSaleTransition
	}
	s.Status = SaleCancelled
	return nil
}
