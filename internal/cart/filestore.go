package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/torsore/storefront/internal/domain"
)

// FileStore persists guest carts as JSON files, one per cart, under a base
// directory. Reads are fail-soft: a missing or corrupted file loads as an
// empty cart so a shopper never loses the ability to shop.
type FileStore struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex // serializes writes per process
}

// NewFileStore creates a file-backed cart store rooted at dir.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) path(cartID string) string {
	// Cart IDs are UUIDs; reject anything that could escape the directory.
	name := filepath.Base(cartID)
	return filepath.Join(s.dir, name+".json")
}

// Load reads a cart from disk. Missing files and unparseable contents both
// produce a fresh empty cart; corruption is logged and the bad file is left
// in place until the next save overwrites it.
func (s *FileStore) Load(ctx context.Context, cartID string) (*domain.Cart, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, domain.ErrCartNotFound
	}

	data, err := os.ReadFile(s.path(cartID))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read cart file, starting empty",
				"cart_id", cartID,
				"error", err)
		}
		return s.emptyCart(cartID), nil
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		s.logger.Warn("cart file is corrupted, starting empty",
			"cart_id", cartID,
			"error", err)
		return s.emptyCart(cartID), nil
	}

	cart.ID = cartID
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	return &cart, nil
}

// Save writes the cart atomically (temp file + rename).
func (s *FileStore) Save(ctx context.Context, cart *domain.Cart) error {
	if cart == nil || strings.TrimSpace(cart.ID) == "" {
		return domain.ErrCartNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "cart-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cart file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cart file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(cart.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cart file: %w", err)
	}
	return nil
}

// Delete removes the cart file. A missing file is not an error.
func (s *FileStore) Delete(ctx context.Context, cartID string) error {
	if err := os.Remove(s.path(cartID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cart file: %w", err)
	}
	return nil
}

func (s *FileStore) emptyCart(cartID string) *domain.Cart {
	now := time.Now()
	return &domain.Cart{
		ID:        cartID,
		Lines:     []domain.CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
