package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/repository"
)

// PostgresStore persists carts for authenticated shoppers, one row per line.
type PostgresStore struct {
	db      *pgxpool.Pool
	queries *repository.Queries
}

// NewPostgresStore creates a Postgres-backed cart store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db:      db,
		queries: repository.New(db),
	}
}

// Load reads all lines for a cart. An unknown cart ID loads as an empty cart.
func (s *PostgresStore) Load(ctx context.Context, cartID string) (*domain.Cart, error) {
	rows, err := s.queries.GetCartLines(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}

	cart := &domain.Cart{
		ID:    cartID,
		Lines: make([]domain.CartLine, 0, len(rows)),
	}
	for _, row := range rows {
		if row.UserID.Valid {
			cart.UserID = row.UserID.String
		}
		if row.CreatedAt.Valid && (cart.CreatedAt.IsZero() || row.CreatedAt.Time.Before(cart.CreatedAt)) {
			cart.CreatedAt = row.CreatedAt.Time
		}
		if row.UpdatedAt.Valid && row.UpdatedAt.Time.After(cart.UpdatedAt) {
			cart.UpdatedAt = row.UpdatedAt.Time
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID:      row.ProductID,
			Name:           row.Name,
			Size:           row.Size,
			Color:          row.Color,
			UnitPriceCents: row.UnitPriceCents,
			Quantity:       int(row.Quantity),
			ImageURL:       row.ImageUrl.String,
		})
	}
	if cart.CreatedAt.IsZero() {
		now := time.Now()
		cart.CreatedAt = now
		cart.UpdatedAt = now
	}
	return cart, nil
}

// Save replaces all lines for the cart in a single transaction.
func (s *PostgresStore) Save(ctx context.Context, cart *domain.Cart) error {
	if cart == nil || cart.ID == "" {
		return domain.ErrCartNotFound
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin cart save: %w", err)
	}
	defer tx.Rollback(ctx)

	q := s.queries.WithTx(tx)
	if err := q.DeleteCartLines(ctx, cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cart.ID, err)
	}

	userID := pgtype.Text{String: cart.UserID, Valid: cart.UserID != ""}
	for _, line := range cart.Lines {
		err := q.UpsertCartLine(ctx, repository.UpsertCartLineParams{
			CartID:         cart.ID,
			UserID:         userID,
			ProductID:      line.ProductID,
			Size:           line.Size,
			Color:          line.Color,
			Name:           line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       int32(line.Quantity),
			ImageUrl:       pgtype.Text{String: line.ImageURL, Valid: line.ImageURL != ""},
		})
		if err != nil {
			return fmt.Errorf("failed to save cart line %s: %w", line.ProductID, err)
		}
	}

	return tx.Commit(ctx)
}

// Delete removes all lines for the cart.
func (s *PostgresStore) Delete(ctx context.Context, cartID string) error {
	if err := s.queries.DeleteCartLines(ctx, cartID); err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", cartID, err)
	}
	return nil
}
