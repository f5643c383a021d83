package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/slavayosome/seriously-ai-sub000/domain/credit"
	"github.com/slavayosome/seriously-ai-sub000/domain/plan"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// WalletStore is a SQLite implementation of ports.WalletStore.
type WalletStore struct {
	db *DB
}

// NewWalletStore creates a wallet store.
func NewWalletStore(db *DB) *WalletStore {
	return &WalletStore{db: db}
}

// Get retrieves a wallet by user id.
func (s *WalletStore) Get(ctx context.Context, userID string) (credit.Wallet, error) {
	var (
		w          credit.Wallet
		tier       string
		nextRefill sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, balance, plan_tier, next_refill
		FROM wallets WHERE user_id = ?
	`, userID).Scan(&w.UserID, &w.Balance, &tier, &nextRefill)
	if err != nil {
		return credit.Wallet{}, fmt.Errorf("get wallet %s: %w", userID, err)
	}

	w.PlanTier = plan.Parse(tier)
	if nextRefill.Valid {
		w.NextRefill = nextRefill.Time
	}
	return w, nil
}

// Upsert stores a wallet row (seeding and tests; the production write path
// is the billing backend's).
func (s *WalletStore) Upsert(ctx context.Context, w credit.Wallet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, plan_tier, next_refill, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			balance = excluded.balance,
			plan_tier = excluded.plan_tier,
			next_refill = excluded.next_refill,
			updated_at = excluded.updated_at
	`, w.UserID, w.Balance, string(w.PlanTier), nullable(w.NextRefill), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert wallet %s: %w", w.UserID, err)
	}
	return nil
}

func nullable(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// Ensure interface compliance.
var _ ports.WalletStore = (*WalletStore)(nil)
