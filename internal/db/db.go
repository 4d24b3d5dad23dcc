// Package db persists the public half of the exchange state: markets,
// user positions, settlements and users, plus the sealed (encrypted)
// order-book snapshots. The confidential book itself never touches the
// database in plaintext.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veilex/darkpool/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so every
// row method works both standalone and inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// User is a registered trader account. The identity column carries the
// 256-bit trader identity used by the engine for ownership checks.
type User struct {
	ID           int
	Username     string
	PasswordHash string
	Identity     models.Identity
	CreatedAt    time.Time
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB initializes a new database connection pool
func NewDB(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error. Boundary operations that touch the market row, positions
// and the sealed book use this so each operation is all-or-nothing.
func (db *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateUser inserts a new user with their trader identity.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string, identity models.Identity) (*User, error) {
	user := &User{}
	var identityHex string
	err := db.Pool.QueryRow(ctx,
		"INSERT INTO users (username, password_hash, identity) VALUES ($1, $2, $3) RETURNING id, username, password_hash, identity, created_at",
		username, passwordHash, identity.String()).Scan(&user.ID, &user.Username, &user.PasswordHash, &identityHex, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if user.Identity, err = models.IdentityFromHex(identityHex); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return db.getUser(ctx, "SELECT id, username, password_hash, identity, created_at FROM users WHERE username = $1", username)
}

// GetUserByID retrieves a user by primary key
func (db *DB) GetUserByID(ctx context.Context, id int) (*User, error) {
	return db.getUser(ctx, "SELECT id, username, password_hash, identity, created_at FROM users WHERE id = $1", id)
}

func (db *DB) getUser(ctx context.Context, sql string, arg any) (*User, error) {
	user := &User{}
	var identityHex string
	err := db.Pool.QueryRow(ctx, sql, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &identityHex, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Identity, err = models.IdentityFromHex(identityHex); err != nil {
		return nil, err
	}
	return user, nil
}

const marketColumns = `market_id, authority, base_vault, quote_vault, fee_rate_bps,
	order_count, active_bids, active_asks, settlement_count,
	pending_maker, pending_taker, pending_maker_order_id, pending_taker_order_id,
	pending_execution_price, pending_execution_amount, pending_matched_at, has_pending_match`

// CreateMarket inserts a new market record.
func (db *DB) CreateMarket(ctx context.Context, q Querier, m *models.Market) error {
	_, err := q.Exec(ctx,
		`INSERT INTO markets (`+marketColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		int64(m.MarketID), m.Authority.String(), m.BaseVault, m.QuoteVault, int32(m.FeeRateBps),
		int64(m.OrderCount), int64(m.ActiveBids), int64(m.ActiveAsks), int64(m.SettlementCount),
		m.PendingMaker.String(), m.PendingTaker.String(), int64(m.PendingMakerOrderID), int64(m.PendingTakerOrderID),
		int64(m.PendingExecutionPrice), int64(m.PendingExecutionAmount), m.PendingMatchedAt, m.HasPendingMatch)
	if err != nil {
		return fmt.Errorf("failed to create market: %w", err)
	}
	return nil
}

// GetMarket retrieves a market by ID.
func (db *DB) GetMarket(ctx context.Context, q Querier, marketID uint64) (models.Market, error) {
	return db.scanMarket(q.QueryRow(ctx,
		"SELECT "+marketColumns+" FROM markets WHERE market_id = $1", int64(marketID)))
}

// GetMarketForUpdate retrieves a market inside a transaction with a row lock,
// giving the at-most-one-writer-at-a-time semantics the engine requires.
func (db *DB) GetMarketForUpdate(ctx context.Context, tx pgx.Tx, marketID uint64) (models.Market, error) {
	return db.scanMarket(tx.QueryRow(ctx,
		"SELECT "+marketColumns+" FROM markets WHERE market_id = $1 FOR UPDATE", int64(marketID)))
}

func (db *DB) scanMarket(row pgx.Row) (models.Market, error) {
	var m models.Market
	var authority, pendingMaker, pendingTaker string
	var marketID, orderCount, activeBids, activeAsks, settlementCount int64
	var makerOrderID, takerOrderID, execPrice, execAmount int64
	var feeRateBps int32

	err := row.Scan(&marketID, &authority, &m.BaseVault, &m.QuoteVault, &feeRateBps,
		&orderCount, &activeBids, &activeAsks, &settlementCount,
		&pendingMaker, &pendingTaker, &makerOrderID, &takerOrderID,
		&execPrice, &execAmount, &m.PendingMatchedAt, &m.HasPendingMatch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return m, ErrNotFound
		}
		return m, fmt.Errorf("failed to get market: %w", err)
	}

	m.MarketID = uint64(marketID)
	m.FeeRateBps = uint16(feeRateBps)
	m.OrderCount = uint64(orderCount)
	m.ActiveBids = uint32(activeBids)
	m.ActiveAsks = uint32(activeAsks)
	m.SettlementCount = uint64(settlementCount)
	m.PendingMakerOrderID = uint64(makerOrderID)
	m.PendingTakerOrderID = uint64(takerOrderID)
	m.PendingExecutionPrice = uint64(execPrice)
	m.PendingExecutionAmount = uint64(execAmount)
	if m.Authority, err = models.IdentityFromHex(authority); err != nil {
		return m, err
	}
	if m.PendingMaker, err = models.IdentityFromHex(pendingMaker); err != nil {
		return m, err
	}
	if m.PendingTaker, err = models.IdentityFromHex(pendingTaker); err != nil {
		return m, err
	}
	return m, nil
}

// ListMarkets retrieves all markets ordered by ID.
func (db *DB) ListMarkets(ctx context.Context) ([]models.Market, error) {
	rows, err := db.Pool.Query(ctx, "SELECT "+marketColumns+" FROM markets ORDER BY market_id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}
	defer rows.Close()

	var markets []models.Market
	for rows.Next() {
		m, err := db.scanMarket(rows)
		if err != nil {
			return nil, err
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list markets: %w", err)
	}
	return markets, nil
}

// UpdateMarket writes back every mutable market field.
func (db *DB) UpdateMarket(ctx context.Context, q Querier, m *models.Market) error {
	tag, err := q.Exec(ctx,
		`UPDATE markets SET order_count = $2, active_bids = $3, active_asks = $4, settlement_count = $5,
		 pending_maker = $6, pending_taker = $7, pending_maker_order_id = $8, pending_taker_order_id = $9,
		 pending_execution_price = $10, pending_execution_amount = $11, pending_matched_at = $12, has_pending_match = $13
		 WHERE market_id = $1`,
		int64(m.MarketID), int64(m.OrderCount), int64(m.ActiveBids), int64(m.ActiveAsks), int64(m.SettlementCount),
		m.PendingMaker.String(), m.PendingTaker.String(), int64(m.PendingMakerOrderID), int64(m.PendingTakerOrderID),
		int64(m.PendingExecutionPrice), int64(m.PendingExecutionAmount), m.PendingMatchedAt, m.HasPendingMatch)
	if err != nil {
		return fmt.Errorf("failed to update market: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const positionColumns = `owner, market_id, base_deposited, quote_deposited, base_locked, quote_locked, active_order_count`

// GetPosition retrieves the position for (market, owner). A missing record is
// returned as a zero position, matching the engine's view that an account
// without deposits simply has nothing.
func (db *DB) GetPosition(ctx context.Context, q Querier, marketID uint64, owner models.Identity) (models.UserPosition, error) {
	return db.scanPosition(q.QueryRow(ctx,
		"SELECT "+positionColumns+" FROM user_positions WHERE market_id = $1 AND owner = $2",
		int64(marketID), owner.String()), marketID, owner)
}

// GetPositionForUpdate retrieves a position with a row lock. The row is
// created on first use so the lock has something to hold.
func (db *DB) GetPositionForUpdate(ctx context.Context, tx pgx.Tx, marketID uint64, owner models.Identity) (models.UserPosition, error) {
	_, err := tx.Exec(ctx,
		`INSERT INTO user_positions (market_id, owner) VALUES ($1, $2) ON CONFLICT (market_id, owner) DO NOTHING`,
		int64(marketID), owner.String())
	if err != nil {
		return models.UserPosition{}, fmt.Errorf("failed to ensure position row: %w", err)
	}
	return db.scanPosition(tx.QueryRow(ctx,
		"SELECT "+positionColumns+" FROM user_positions WHERE market_id = $1 AND owner = $2 FOR UPDATE",
		int64(marketID), owner.String()), marketID, owner)
}

func (db *DB) scanPosition(row pgx.Row, marketID uint64, owner models.Identity) (models.UserPosition, error) {
	var p models.UserPosition
	var ownerHex string
	var mID, baseDep, quoteDep, baseLocked, quoteLocked, orderCount int64

	err := row.Scan(&ownerHex, &mID, &baseDep, &quoteDep, &baseLocked, &quoteLocked, &orderCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.UserPosition{Owner: owner, MarketID: marketID}, nil
		}
		return p, fmt.Errorf("failed to get position: %w", err)
	}

	p.MarketID = uint64(mID)
	p.BaseDeposited = uint64(baseDep)
	p.QuoteDeposited = uint64(quoteDep)
	p.BaseLocked = uint64(baseLocked)
	p.QuoteLocked = uint64(quoteLocked)
	p.ActiveOrderCount = uint32(orderCount)
	if p.Owner, err = models.IdentityFromHex(ownerHex); err != nil {
		return p, err
	}
	return p, nil
}

// UpsertPosition writes back a position record.
func (db *DB) UpsertPosition(ctx context.Context, q Querier, p *models.UserPosition) error {
	_, err := q.Exec(ctx,
		`INSERT INTO user_positions (`+positionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (market_id, owner) DO UPDATE SET
		   base_deposited = EXCLUDED.base_deposited,
		   quote_deposited = EXCLUDED.quote_deposited,
		   base_locked = EXCLUDED.base_locked,
		   quote_locked = EXCLUDED.quote_locked,
		   active_order_count = EXCLUDED.active_order_count`,
		p.Owner.String(), int64(p.MarketID), int64(p.BaseDeposited), int64(p.QuoteDeposited),
		int64(p.BaseLocked), int64(p.QuoteLocked), int64(p.ActiveOrderCount))
	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}
	return nil
}

const settlementColumns = `settlement_id, market_id, maker, taker, maker_order_id, taker_order_id,
	execution_price, execution_amount, maker_is_buy, settled, matched_at, settled_at`

// InsertSettlement appends a new settlement record.
func (db *DB) InsertSettlement(ctx context.Context, q Querier, s *models.TradeSettlement) error {
	_, err := q.Exec(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		int64(s.SettlementID), int64(s.MarketID), s.Maker.String(), s.Taker.String(),
		int64(s.MakerOrderID), int64(s.TakerOrderID), int64(s.ExecutionPrice), int64(s.ExecutionAmount),
		s.MakerIsBuy, s.Settled, s.MatchedAt, s.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlementForUpdate retrieves a settlement with a row lock.
func (db *DB) GetSettlementForUpdate(ctx context.Context, tx pgx.Tx, marketID, settlementID uint64) (models.TradeSettlement, error) {
	return db.scanSettlement(tx.QueryRow(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE market_id = $1 AND settlement_id = $2 FOR UPDATE",
		int64(marketID), int64(settlementID)))
}

// ListSettlements retrieves all settlements for a market, oldest first.
func (db *DB) ListSettlements(ctx context.Context, marketID uint64) ([]models.TradeSettlement, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE market_id = $1 ORDER BY settlement_id ASC",
		int64(marketID))
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.TradeSettlement
	for rows.Next() {
		s, err := db.scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return settlements, nil
}

func (db *DB) scanSettlement(row pgx.Row) (models.TradeSettlement, error) {
	var s models.TradeSettlement
	var maker, taker string
	var settlementID, marketID, makerOrderID, takerOrderID, execPrice, execAmount int64

	err := row.Scan(&settlementID, &marketID, &maker, &taker, &makerOrderID, &takerOrderID,
		&execPrice, &execAmount, &s.MakerIsBuy, &s.Settled, &s.MatchedAt, &s.SettledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, ErrNotFound
		}
		return s, fmt.Errorf("failed to get settlement: %w", err)
	}

	s.SettlementID = uint64(settlementID)
	s.MarketID = uint64(marketID)
	s.MakerOrderID = uint64(makerOrderID)
	s.TakerOrderID = uint64(takerOrderID)
	s.ExecutionPrice = uint64(execPrice)
	s.ExecutionAmount = uint64(execAmount)
	if s.Maker, err = models.IdentityFromHex(maker); err != nil {
		return s, err
	}
	if s.Taker, err = models.IdentityFromHex(taker); err != nil {
		return s, err
	}
	return s, nil
}

// UpdateSettlement writes back the settled flag and timestamp.
func (db *DB) UpdateSettlement(ctx context.Context, q Querier, s *models.TradeSettlement) error {
	tag, err := q.Exec(ctx,
		"UPDATE settlements SET settled = $3, settled_at = $4 WHERE market_id = $1 AND settlement_id = $2",
		int64(s.MarketID), int64(s.SettlementID), s.Settled, s.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveBookSnapshot stores the sealed order book for a market.
func (db *DB) SaveBookSnapshot(ctx context.Context, q Querier, marketID uint64, sealed []byte) error {
	_, err := q.Exec(ctx,
		`INSERT INTO book_snapshots (market_id, sealed, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (market_id) DO UPDATE SET sealed = EXCLUDED.sealed, updated_at = now()`,
		int64(marketID), sealed)
	if err != nil {
		return fmt.Errorf("failed to save book snapshot: %w", err)
	}
	return nil
}

// LoadBookSnapshot retrieves the sealed order book for a market.
func (db *DB) LoadBookSnapshot(ctx context.Context, q Querier, marketID uint64) ([]byte, error) {
	var sealed []byte
	err := q.QueryRow(ctx,
		"SELECT sealed FROM book_snapshots WHERE market_id = $1", int64(marketID)).Scan(&sealed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load book snapshot: %w", err)
	}
	return sealed, nil
}
