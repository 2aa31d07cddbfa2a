package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getCartLines = `-- name: GetCartLines :many
SELECT cart_id, user_id, product_id, size, color, name, unit_price_cents, quantity, image_url, created_at, updated_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at, product_id, size, color
`

func (q *Queries) GetCartLines(ctx context.Context, cartID string) ([]CartLine, error) {
	rows, err := q.db.Query(ctx, getCartLines, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CartLine
	for rows.Next() {
		var i CartLine
		if err := rows.Scan(
			&i.CartID,
			&i.UserID,
			&i.ProductID,
			&i.Size,
			&i.Color,
			&i.Name,
			&i.UnitPriceCents,
			&i.Quantity,
			&i.ImageUrl,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertCartLine = `-- name: UpsertCartLine :exec
INSERT INTO cart_lines (
    cart_id, user_id, product_id, size, color, name, unit_price_cents, quantity, image_url
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
)
ON CONFLICT (cart_id, product_id, size, color) DO UPDATE
SET name = EXCLUDED.name,
    unit_price_cents = EXCLUDED.unit_price_cents,
    quantity = EXCLUDED.quantity,
    image_url = EXCLUDED.image_url,
    updated_at = now()
`

type UpsertCartLineParams struct {
	CartID         string
	UserID         pgtype.Text
	ProductID      string
	Size           string
	Color          string
	Name           string
	UnitPriceCents int64
	Quantity       int32
	ImageUrl       pgtype.Text
}

func (q *Queries) UpsertCartLine(ctx context.Context, arg UpsertCartLineParams) error {
	_, err := q.db.Exec(ctx, upsertCartLine,
		arg.CartID,
		arg.UserID,
		arg.ProductID,
		arg.Size,
		arg.Color,
		arg.Name,
		arg.UnitPriceCents,
		arg.Quantity,
		arg.ImageUrl,
	)
	return err
}

const deleteCartLines = `-- name: DeleteCartLines :exec
DELETE FROM cart_lines
WHERE cart_id = $1
`

func (q *Queries) DeleteCartLines(ctx context.Context, cartID string) error {
	_, err := q.db.Exec(ctx, deleteCartLines, cartID)
	return err
}

const insertWebhookEvent = `-- name: InsertWebhookEvent :execrows
INSERT INTO webhook_events (id, event_type)
VALUES ($1, $2)
ON CONFLICT (id) DO NOTHING
`

type InsertWebhookEventParams struct {
	ID        string
	EventType string
}

// InsertWebhookEvent records a gateway event. Returns false when the event
// was already recorded, which is the duplicate-delivery signal.
func (q *Queries) InsertWebhookEvent(ctx context.Context, arg InsertWebhookEventParams) (bool, error) {
	tag, err := q.db.Exec(ctx, insertWebhookEvent, arg.ID, arg.EventType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
