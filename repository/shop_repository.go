package repository

import (
	"context"
	"errors"
	"fmt"

	"logiq/database"
	"logiq/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const shopItemColumns = `id, guild_id, name, description, price, created_at`

// ShopRepository implements service.ShopRepository on PostgreSQL
type ShopRepository struct {
	q queryable
}

// NewShopRepository creates a new shop repository
func NewShopRepository(db *database.DB) *ShopRepository {
	return &ShopRepository{q: db.Pool}
}

func scanShopItem(row pgx.Row) (*models.ShopItem, error) {
	var item models.ShopItem
	err := row.Scan(
		&item.ID,
		&item.GuildID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns a guild's items in listing order
func (r *ShopRepository) List(ctx context.Context, guildID int64, limit int) ([]*models.ShopItem, error) {
	query := `
		SELECT ` + shopItemColumns + `
		FROM shop_items
		WHERE guild_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	items := []*models.ShopItem{}
	for rows.Next() {
		item, err := scanShopItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shop items: %w", err)
	}

	return items, nil
}

// Create stores item under a new ID
func (r *ShopRepository) Create(ctx context.Context, item *models.ShopItem) error {
	id := uuid.NewString()
	query := `INSERT INTO shop_items (` + shopItemColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.q.Exec(ctx, query, id, item.GuildID, item.Name, item.Description, item.Price, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shop item: %w", err)
	}

	item.ID = id
	return nil
}

// Get retrieves an item by ID
func (r *ShopRepository) Get(ctx context.Context, id string) (*models.ShopItem, error) {
	query := `SELECT ` + shopItemColumns + ` FROM shop_items WHERE id = $1`

	item, err := scanShopItem(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop item %s: %w", id, err)
	}

	return item, nil
}
