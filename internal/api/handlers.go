// Package api composes the engine's call boundaries into HTTP handlers:
// order submission, order withdrawal, the matching trigger, and the
// three-step settlement pipeline, plus the custody interface and public
// state reads. Each mutating handler runs as one database transaction with
// the market row locked, which gives every engine operation the
// one-writer-at-a-time isolation it assumes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/veilex/darkpool/internal/auth"
	"github.com/veilex/darkpool/internal/book"
	"github.com/veilex/darkpool/internal/db"
	"github.com/veilex/darkpool/internal/ledger"
	"github.com/veilex/darkpool/internal/models"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	DB          *db.DB
	AuthService *auth.AuthService
	Sealer      *book.Sealer
	Log         *zap.SugaredLogger
}

// NewHandler creates a new handler
func NewHandler(database *db.DB, authService *auth.AuthService, sealer *book.Sealer, log *zap.SugaredLogger) *Handler {
	return &Handler{DB: database, AuthService: authService, Sealer: sealer, Log: log}
}

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.JWTAuthMiddleware)
		r.Post("/markets", h.CreateMarket)
		r.Get("/markets/{marketID}", h.GetMarket)
		r.Post("/markets/{marketID}/deposit", h.Deposit)
		r.Post("/markets/{marketID}/withdraw", h.Withdraw)
		r.Get("/markets/{marketID}/position", h.GetPosition)
		r.Post("/markets/{marketID}/orders", h.PlaceOrder)
		r.Delete("/markets/{marketID}/orders/{orderID}", h.CancelOrder)
		r.Post("/markets/{marketID}/match", h.MatchOrders)
		r.Post("/markets/{marketID}/settlements", h.CreateSettlement)
		r.Get("/markets/{marketID}/settlements", h.ListSettlements)
		r.Post("/markets/{marketID}/settlements/{settlementID}/settle", h.SettleTrade)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondOpError maps the engine's error taxonomy onto HTTP statuses:
// validation failures are 400, missing records 404, precondition violations
// 409, and arithmetic faults 422. Anything else is an internal error.
func (h *Handler) respondOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidPrice), errors.Is(err, ledger.ErrAmountTooSmall):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrUnauthorized):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrOrderNotFound), errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrBookFull),
		errors.Is(err, ledger.ErrPendingMatch),
		errors.Is(err, ledger.ErrNoMatch),
		errors.Is(err, ledger.ErrAlreadySettled),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrTooManyOrders):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrMathOverflow):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.Log.Errorw("operation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.Log.Errorw("failed to register user", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"identity": user.Identity.String(),
	})
}

// Login handles user login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// JWTAuthMiddleware verifies JWT tokens
func (h *Handler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			respondError(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		// Remove "Bearer " prefix if present
		if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
			tokenString = tokenString[7:]
		}

		userID, err := h.AuthService.GetUserFromToken(tokenString)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		// Add user_id to context
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type contextKey string

const userIDKey contextKey = "user_id"

// callerIdentity resolves the authenticated user's trader identity. Every
// engine operation authorizes on this identity, never on request fields.
func (h *Handler) callerIdentity(r *http.Request) (models.Identity, error) {
	userID, ok := r.Context().Value(userIDKey).(int)
	if !ok {
		return models.Identity{}, ledger.ErrUnauthorized
	}
	user, err := h.DB.GetUserByID(r.Context(), userID)
	if err != nil {
		return models.Identity{}, err
	}
	return user.Identity, nil
}

func marketIDParam(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "marketID"), 10, 63)
}

// loadBook opens the market's sealed order book. A market with no snapshot
// yet simply has an empty book.
func (h *Handler) loadBook(ctx context.Context, q db.Querier, marketID uint64) (models.OrderBook, error) {
	sealed, err := h.DB.LoadBookSnapshot(ctx, q, marketID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.OrderBook{}, nil
		}
		return models.OrderBook{}, err
	}
	return h.Sealer.Open(sealed)
}

// saveBook seals and persists the order book.
func (h *Handler) saveBook(ctx context.Context, q db.Querier, marketID uint64, b models.OrderBook) error {
	sealed, err := h.Sealer.Seal(b)
	if err != nil {
		return err
	}
	return h.DB.SaveBookSnapshot(ctx, q, marketID, sealed)
}

// marketJSON exposes only the market's public aggregates; nothing about
// individual resting orders leaves the sealed book.
func marketJSON(m *models.Market) map[string]any {
	return map[string]any{
		"market_id":         m.MarketID,
		"base_vault":        m.BaseVault,
		"quote_vault":       m.QuoteVault,
		"fee_rate_bps":      m.FeeRateBps,
		"order_count":       m.OrderCount,
		"active_bids":       m.ActiveBids,
		"active_asks":       m.ActiveAsks,
		"settlement_count":  m.SettlementCount,
		"has_pending_match": m.HasPendingMatch,
	}
}

func settlementJSON(s *models.TradeSettlement) map[string]any {
	return map[string]any{
		"settlement_id":    s.SettlementID,
		"market_id":        s.MarketID,
		"maker":            s.Maker.String(),
		"taker":            s.Taker.String(),
		"maker_order_id":   s.MakerOrderID,
		"taker_order_id":   s.TakerOrderID,
		"execution_price":  s.ExecutionPrice,
		"execution_amount": s.ExecutionAmount,
		"maker_is_buy":     s.MakerIsBuy,
		"settled":          s.Settled,
		"matched_at":       s.MatchedAt,
		"settled_at":       s.SettledAt,
	}
}

// CreateMarket provisions a new trading pair with the caller as authority
// and an empty sealed order book.
func (h *Handler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	identity, err := h.callerIdentity(r)
	if err != nil {
		h.respondOpError(w, err)
		return
	}

	var req struct {
		MarketID   uint64 `json:"market_id"`
		BaseVault  string `json:"base_vault"`
		QuoteVault string `json:"quote_vault"`
		FeeRateBps uint16 `json:"fee_rate_bps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FeeRateBps > models.FeeDenominator {
		respondError(w, http.StatusBadRequest, "fee rate above 100%")
		return
	}

	m := models.Market{
		MarketID:   req.MarketID,
		Authority:  identity,
		BaseVault:  req.BaseVault,
		QuoteVault: req.QuoteVault,
		FeeRateBps: req.FeeRateBps,
	}

	err = h.DB.WithTx(r.Context(), func(tx pgx.Tx) error {
		if err := h.DB.CreateMarket(r.Context(), tx, &m); err != nil {
			return err
		}
		return h.saveBook(r.Context(), tx, m.MarketID, models.OrderBook{})
	})
	if err != nil {
		h.respondOpError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, marketJSON(&m))
}

// GetMarket returns a market's public aggregates.
func (h *Handler) GetMarket(w http.ResponseWriter, r *http.Request) {
	marketID, err := marketIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid market ID")
		return
	}

	m, err := h.DB.GetMarket(r.Context(), h.DB.Pool, marketID)
	if err != nil {
		h.respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, marketJSON(&m))
}

type custodyRequest struct {
	Asset  string `json:"asset"` // "base" or "quote"
	Amount uint64 `json:"amount"`
}

func (h *Handler) custodyOp(w http.ResponseWriter, r *http.Request,
	apply func(models.UserPosition, uint64, bool) (models.UserPosition, error)) {

	identity, err := h.callerIdentity(r)
	if err != nil {
		h.respondOpError(w, err)
		return
	}
	marketID, err := marketIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid market ID")
		return
	}

	var req custodyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Asset != "base" && req.Asset != "quote" {
		respondError(w, http.StatusBadRequest, `asset must be "base" or "quote"`)
		return
	}

	var pos models.UserPosition
	err = h.DB.WithTx(r.Context(), func(tx pgx.Tx) error {
		if _, err := h.DB.GetMarket(r.Context(), tx, marketID); err != nil {
			return err
		}
		p, err := h.DB.GetPositionForUpdate(r.Context(), tx, marketID, identity)
		if err != nil {
			return err
		}
		if p, err = apply(p, req.Amount, req.Asset == "base"); err != nil {
			return err
		}
		pos = p
		return h.DB.UpsertPosition(r.Context(), tx, &p)
	})
	if err != nil {
		h.respondOpError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, positionJSON(&pos))
}

// Deposit credits the caller's position record for this market.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.custodyOp(w, r, ledger.Deposit)
}

// Withdraw debits available (unlocked) balance from the caller's position.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.custodyOp(w, r, ledger.WithdrawFunds)
}

func positionJSON(p *models.UserPosition) map[string]any {
	return map[string]any{
		"market_id":          p.MarketID,
		"owner":              p.Owner.String(),
		"base_deposited":     p.BaseDeposited,
		"quote_deposited":    p.QuoteDeposited,
		"base_locked":        p.BaseLocked,
		"quote_locked":       p.QuoteLocked,
		"base_available":     p.BaseAvailable(),
		"quote_available":    p.QuoteAvailable(),
		"active_order_count": p.ActiveOrderCount,
	}
}

// GetPosition returns the caller's own custody record.
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	identity, err := h.callerIdentity(r)
	if err != nil {
		h.respondOpError(w, err)
		return
	}
	marketID, err := marketIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid market ID")
		return
	}

	pos, err := h.DB.GetPosition(r.Context(), h.DB.Pool, marketID, identity)
	if err != nil {
		h.respondOpError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, positionJSON(&pos))
}

// PlaceOrder admits a new order: it reserves balance against the caller's
// position, allocates an order ID from the market counter, and inserts the
// order into the sealed book. A full table rejects the order with no
// counter movement; the transaction rolls back in one piece.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	identity, err := h.callerIdentity(r)
	if err != nil {
		h.respondOpError(w, err)
		return
	}
	marketID, err := marketIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid market ID")
		return
	}

	var req struct {
		Side   string `json:"side"` // "buy" or "sell"
		Price  uint64 `json:"price"`
		Amount uint64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Side != "buy" && req.Side != "sell" {
		respondError(w, http.StatusBadRequest, `side must be "buy" or "sell"`)
		return
	}
	isBuy := req.Side == "buy"
	if req.Price == 0 {
		h.respondOpError(w, ledger.ErrInvalidPrice)
		return
	}
	if req.Amount == 0 {
		h.respondOpError(w, ledger.ErrAmountTooSmall)
		return
	}

	var orderID uint64
	var timestamp int64
	err = h.DB.WithTx(r.Context(), func(tx pgx.Tx) error {
		m, err := h.DB.GetMarketForUpdate(r.Context(), tx, marketID)
		if err != nil {
			return err
		}

		lockAmount, err := ledger.LockAmount(req.Amount, req.Price, isBuy)
		if err != nil {
			return err
		}
		pos, err := h.DB.GetPositionForUpdate(r.Context(), tx, marketID, identity)
		if err != nil {
			return err
		}
		if pos, err = ledger.LockForOrder(pos, lockAmount, isBuy); err != nil {
			return err
		}

		b, err := h.loadBook(r.Context(), tx, marketID)
		if err != nil {
			return err
		}

		orderID = m.NextOrderID()
		timestamp = time.Now().UnixNano()
		b, inserted := book.Insert(b, models.Order{
			Price:     req.Price,
			Amount:    req.Amount,
			Owner:     identity,
			OrderID:   orderID,
			Side:      isBuy,
			Timestamp: timestamp,
		})
		if !inserted {
			return ledger.ErrBookFull
		}

		if isBuy {
			m.ActiveBids++
		} else {
			m.ActiveAsks++
		}

		if err := h.DB.UpsertPosition(r.Context(), tx, &pos); err != nil {
			return err
		}
		if err := h.DB.UpdateMarket(r.Context(), tx, &m); err != nil {
			return err
		}
		return h.saveBook(r.Context(), tx, marketID, b)
	})
	if err != nil {
		h.respondOpError(w, err)
		return
	}

	h.Log.Infow("order placed", "market", marketID, "order_id", orderID, "side", req.Side)
	respondJSON(w, http.StatusCreated, map[string]any{
		"order_id":  orderID,
		"timestamp": timestamp,
	})
}

// CancelOrder withdraws an order. The withdrawal authorizes on the caller's
// identity inside the sealed book, then the released reservation is returned
// to the caller's position.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	identity, err := h.callerIdentity(r)
	if err != nil {
		h.respondOpError(w, err)
		return
	}
	marketID, err := marketIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid market ID")
		return
	}
	orderID, err := strconv.ParseUint(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	err = h.DB.WithTx(r.Context(), func(tx pgx.Tx) error {
		m, err := h.DB.GetMarketForUpdate(r.Context(), tx, marketID)
		if err != nil {
			return err
		}

		b, err := h.loadBook(r.Context(), tx, marketID)
		if err != nil {
			return err
		}

		o, found := book.Lookup(b, orderID, identity)
		if !found {
			return ledger.ErrOrderNotFound
		}
		b, removed := book.Withdraw(b, orderID, identity)
		if !removed {
			return ledger.ErrOrderNotFound
		}

		lockAmount, err := ledger.LockAmount(o.Amount, o.Price, o.Side)
		if err != nil {
			return err
		}
		pos, err := h.DB.GetPositionForUpdate(r.Context(), tx, marketID, identity)
		if err != nil {
			return err
		}
		pos = ledger.UnlockForCancel(pos, lockAmount, o.Side)

		if o.Side {
			if m.ActiveBids > 0 {
				m.ActiveBids--
			}
		} else if m.ActiveAsks > 0 {
			m.ActiveAsks--
		}

		if err := h.DB.UpsertPosition(r.Context(), tx, &pos); err != nil {
			return err
		}
		if err := h.DB.UpdateMarket(r.Context(), tx, &m); err != nil {
			return err
		}
		return h.saveBook(r.Context(), tx, marketID, b)
	})
	if err != nil {
		h.respondOpError(w, err)
		return
	}

	h.Log.Infow("order canceled", "market", marketID, "order_id", orderID)
	respondJSON(w, http.StatusOK, map[string]any{"removed": true})
}

// MatchOrders runs one matching pass over the sealed book. Only the match
// result's own fields are disclosed; an unmatched pass returns a response
// of identical shape with every field zeroed. A match is captured into the
// market's pending slot and must be turned into a settlement record before
// the next pass is allowed.
func (h *Handler) MatchOrders(w http.ResponseWriter, r *http.Request) {
	marketID, err := marketIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid market ID")
		return
	}

	var result models.MatchResult
	err = h.DB.WithTx(r.Context(), func(tx pgx.Tx) error {
		m, err := h.DB.GetMarketForUpdate(r.Context(), tx, marketID)
		if err != nil {
			return err
		}
		if m.HasPendingMatch {
			return ledger.ErrPendingMatch
		}

		b, err := h.loadBook(r.Context(), tx, marketID)
		if err != nil {
			return err
		}

		b, result = book.Match(b)
		if result.Matched {
			if m, err = ledger.CapturePendingMatch(m, result, time.Now().Unix()); err != nil {
				return err
			}
			if err := h.DB.UpdateMarket(r.Context(), tx, &m); err != nil {
				return err
			}
		}
		return h.saveBook(r.Context(), tx, marketID, b)
	})
	if err != nil {
		h.respondOpError(w, err)
		return
	}

	if result.Matched {
		h.Log.Infow("orders matched", "market", marketID,
			"maker_order_id", result.MakerOrderID, "taker_order_id", result.TakerOrderID,
			"execution_price", result.ExecutionPrice, "execution_amount", result.ExecutionAmount)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"matched":          result.Matched,
		"maker_order_id":   result.MakerOrderID,
		"taker_order_id":   result.TakerOrderID,
		"execution_price":  result.ExecutionPrice,
		"execution_amount": result.ExecutionAmount,
		"maker":            result.Maker.String(),
		"taker":            result.Taker.String(),
		"maker_is_buy":     result.MakerIsBuy,
	})
}

// CreateSettlement materializes the market's pending match into a durable
// settlement record. Any caller may do this; the match itself is not rerun.
func (h *Handler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	marketID, err := marketIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid market ID")
		return
	}

	var settlement models.TradeSettlement
	err = h.DB.WithTx(r.Context(), func(tx pgx.Tx) error {
		m, err := h.DB.GetMarketForUpdate(r.Context(), tx, marketID)
		if err != nil {
			return err
		}
		m, s, err := ledger.CreateSettlement(m)
		if err != nil {
			return err
		}
		settlement = s
		if err := h.DB.InsertSettlement(r.Context(), tx, &s); err != nil {
			return err
		}
		return h.DB.UpdateMarket(r.Context(), tx, &m)
	})
	if err != nil {
		h.respondOpError(w, err)
		return
	}

	h.Log.Infow("settlement created", "market", marketID, "settlement_id", settlement.SettlementID)
	respondJSON(w, http.StatusCreated, settlementJSON(&settlement))
}

// ListSettlements returns a market's settlement history, oldest first.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	marketID, err := marketIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid market ID")
		return
	}

	settlements, err := h.DB.ListSettlements(r.Context(), marketID)
	if err != nil {
		h.respondOpError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(settlements))
	for i := range settlements {
		out = append(out, settlementJSON(&settlements[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// SettleTrade applies the balance transfer for one settlement. A second
// attempt on the same settlement is rejected with no balance change.
func (h *Handler) SettleTrade(w http.ResponseWriter, r *http.Request) {
	marketID, err := marketIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid market ID")
		return
	}
	settlementID, err := strconv.ParseUint(chi.URLParam(r, "settlementID"), 10, 63)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid settlement ID")
		return
	}

	var settlement models.TradeSettlement
	err = h.DB.WithTx(r.Context(), func(tx pgx.Tx) error {
		m, err := h.DB.GetMarketForUpdate(r.Context(), tx, marketID)
		if err != nil {
			return err
		}
		s, err := h.DB.GetSettlementForUpdate(r.Context(), tx, marketID, settlementID)
		if err != nil {
			return err
		}
		maker, err := h.DB.GetPositionForUpdate(r.Context(), tx, marketID, s.Maker)
		if err != nil {
			return err
		}
		taker, err := h.DB.GetPositionForUpdate(r.Context(), tx, marketID, s.Taker)
		if err != nil {
			return err
		}

		s, maker, taker, err = ledger.SettleTrade(m, s, maker, taker, time.Now().Unix())
		if err != nil {
			return err
		}
		settlement = s

		if err := h.DB.UpdateSettlement(r.Context(), tx, &s); err != nil {
			return err
		}
		if err := h.DB.UpsertPosition(r.Context(), tx, &maker); err != nil {
			return err
		}
		return h.DB.UpsertPosition(r.Context(), tx, &taker)
	})
	if err != nil {
		h.respondOpError(w, err)
		return
	}

	h.Log.Infow("trade settled", "market", marketID, "settlement_id", settlementID)
	respondJSON(w, http.StatusOK, settlementJSON(&settlement))
}
