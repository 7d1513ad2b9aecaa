// server.go - REST API for the marketplace daemon.
//
// The entry points of the marketplace controller are exposed as JSON
// endpoints. Proof artifacts travel base64-encoded; field elements
// (commitments, nullifiers, public inputs) travel as decimal strings.
package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/marketplace"
)

// Server wires the marketplace controller into HTTP handlers.
type Server struct {
	mkt     *marketplace.Marketplace
	log     zerolog.Logger
	metrics *MetricsCollector
	health  *HealthChecker
	limiter *AccountRateLimiter
}

// NewServer creates a Server.
func NewServer(mkt *marketplace.Marketplace, log zerolog.Logger, metrics *MetricsCollector, health *HealthChecker, limiter *AccountRateLimiter) *Server {
	return &Server{mkt: mkt, log: log, metrics: metrics, health: health, limiter: limiter}
}

// Routes returns the daemon's HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /seller/register", s.handleRegisterSeller)
	mux.HandleFunc("POST /asset/list", s.handleListAsset)
	mux.HandleFunc("POST /asset/buy", s.handleBuyAsset)
	mux.HandleFunc("POST /sale/cancel", s.handleCancelSale)
	mux.HandleFunc("POST /reputation", s.handleReputation)
	mux.HandleFunc("POST /review", s.handleReview)
	mux.HandleFunc("POST /admin/seed", s.handleSeed)
	mux.HandleFunc("GET /asset", s.handleGetAsset)
	mux.HandleFunc("GET /profile", s.handleGetProfile)
	mux.HandleFunc("GET /sale", s.handleGetSale)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	return mux
}

// ---- request/response types ----

type registerSellerRequest struct {
	Commitment string `json:"commitment"`
}

type listAssetRequest struct {
	AssetID      uint32   `json:"asset_id"`
	Price        uint32   `json:"price"`
	Seller       string   `json:"seller"`
	Proof        string   `json:"proof"`
	PublicInputs []string `json:"public_inputs"`
}

type buyAssetRequest struct {
	AssetID uint32 `json:"asset_id"`
	Buyer   string `json:"buyer"`
	Price   uint32 `json:"price"`
}

type cancelSaleRequest struct {
	AssetID uint32 `json:"asset_id"`
	Caller  string `json:"caller"`
}

type reputationRequest struct {
	Seller       string   `json:"seller"`
	Proof        string   `json:"proof"`
	PublicInputs []string `json:"public_inputs"`
}

type reviewRequest struct {
	Seller     string `json:"seller"`
	Ciphertext string `json:"ciphertext"`
}

type seedRequest struct {
	Assets []marketplace.Asset       `json:"assets"`
	Users  []marketplace.UserProfile `json:"users"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- handlers ----

func (s *Server) handleRegisterSeller(w http.ResponseWriter, r *http.Request) {
	var req registerSellerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	cm, ok := new(big.Int).SetString(req.Commitment, 10)
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid commitment"))
		return
	}
	s.observe(w, "register_seller", func() error { return s.mkt.RegisterSeller(cm) })
}

func (s *Server) handleListAsset(w http.ResponseWriter, r *http.Request) {
	var req listAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.allow(w, req.Seller) {
		return
	}
	if err := validAccountID(req.Seller); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	proof, publics, err := decodeProof(req.Proof, req.PublicInputs)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.observe(w, "list_asset", func() error {
		return s.mkt.ListAsset(req.AssetID, req.Price, marketplace.AccountID(req.Seller), proof, publics)
	})
}

func (s *Server) handleBuyAsset(w http.ResponseWriter, r *http.Request) {
	var req buyAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.allow(w, req.Buyer) {
		return
	}
	if err := validAccountID(req.Buyer); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.observe(w, "buy_asset", func() error {
		return s.mkt.BuyAsset(req.AssetID, marketplace.AccountID(req.Buyer), req.Price)
	})
}

func (s *Server) handleCancelSale(w http.ResponseWriter, r *http.Request) {
	var req cancelSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.allow(w, req.Caller) {
		return
	}
	if err := validAccountID(req.Caller); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.observe(w, "cancel_sale", func() error {
		return s.mkt.CancelSale(req.AssetID, marketplace.AccountID(req.Caller))
	})
}

func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	var req reputationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.allow(w, req.Seller) {
		return
	}
	if err := validAccountID(req.Seller); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	proof, publics, err := decodeProof(req.Proof, req.PublicInputs)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.observe(w, "submit_reputation_proof", func() error {
		return s.mkt.SubmitReputationProof(marketplace.AccountID(req.Seller), proof, publics)
	})
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validAccountID(req.Seller); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	ciphertext, err := base64.StdEncoding.DecodeString(req.Ciphertext)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid ciphertext: %w", err))
		return
	}
	s.observe(w, "submit_review", func() error {
		return s.mkt.SubmitReview(marketplace.AccountID(req.Seller), ciphertext)
	})
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.observe(w, "seed", func() error { return s.mkt.Bootstrap(req.Assets, req.Users) })
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	var id uint32
	if _, err := fmt.Sscanf(r.URL.Query().Get("id"), "%d", &id); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid asset id"))
		return
	}
	asset, err := s.mkt.Asset(id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if err := validAccountID(account); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	profile, err := s.mkt.Profile(marketplace.AccountID(account))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := s.mkt.CurrentSale()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   sale.Status.String(),
		"price":    sale.Price,
		"asset_id": sale.AssetID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.health.Check()
	code := http.StatusOK
	if health.OverallStatus != Healthy {
		code = http.StatusServiceUnavailable
	}
	s.writeJSON(w, code, health)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.GetAllMetrics())
}

// ---- helpers ----

// observe runs a controller call, records its outcome, and writes the
// response.
func (s *Server) observe(w http.ResponseWriter, op string, fn func() error) {
	start := time.Now()
	err := fn()
	labels := map[string]string{"op": op}
	s.metrics.IncrementCounter("marketd_ops_total", labels)
	s.metrics.RecordHistogram("marketd_op_seconds", time.Since(start).Seconds(), labels)
	if err != nil {
		s.metrics.IncrementCounter("marketd_op_failures_total", labels)
		s.log.Warn().Str("op", op).Err(err).Msg("operation rejected")
		s.writeError(w, statusFor(err), err)
		return
	}
	s.log.Info().Str("op", op).Msg("operation applied")
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) allow(w http.ResponseWriter, accountID string) bool {
	if s.limiter.Allow(accountID) {
		return true
	}
	s.writeError(w, http.StatusTooManyRequests, fmt.Errorf("rate limit exceeded"))
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("response encoding failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func validAccountID(id string) error {
	_, err := marketplace.DecodeAccountID(marketplace.AccountID(id))
	return err
}

func decodeProof(proofB64 string, inputs []string) ([]byte, []*big.Int, error) {
	proof, err := base64.StdEncoding.DecodeString(proofB64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid proof encoding: %w", err)
	}
	publics := make([]*big.Int, len(inputs))
	for i, in := range inputs {
		v, ok := new(big.Int).SetString(in, 10)
		if !ok {
			return nil, nil, fmt.Errorf("invalid public input %d", i)
		}
		publics[i] = v
	}
	return proof, publics, nil
}

// statusFor maps controller rejections onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, marketplace.ErrInvalidProof),
		errors.Is(err, marketplace.ErrNotRegistered):
		return http.StatusForbidden
	case errors.Is(err, marketplace.ErrNullifierSpent),
		errors.Is(err, marketplace.ErrSaleTransition):
		return http.StatusConflict
	case errors.Is(err, marketplace.ErrPriceMismatch),
		errors.Is(err, marketplace.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, marketplace.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, marketplace.ErrAssetNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
