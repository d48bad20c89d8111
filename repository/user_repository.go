package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"logiq/database"
	"logiq/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `user_id, guild_id, xp, level, balance, inventory, warnings, created_at`

// UserRepository implements service.UserRepository on PostgreSQL
type UserRepository struct {
	db *database.DB
	q  queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db, q: db.Pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var inventoryJSON, warningsJSON []byte

	err := row.Scan(
		&user.UserID,
		&user.GuildID,
		&user.XP,
		&user.Level,
		&user.Balance,
		&inventoryJSON,
		&warningsJSON,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Inventory = []models.InventoryItem{}
	if len(inventoryJSON) > 0 {
		if err := json.Unmarshal(inventoryJSON, &user.Inventory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal inventory: %w", err)
		}
	}
	user.Warnings = []models.Warning{}
	if len(warningsJSON) > 0 {
		if err := json.Unmarshal(warningsJSON, &user.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
	}

	return &user, nil
}

// Get retrieves a user by key
func (r *UserRepository) Get(ctx context.Context, key models.UserKey) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND guild_id = $2`

	user, err := scanUser(r.q.QueryRow(ctx, query, key.UserID, key.GuildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return user, nil
}

// CreateIfAbsent inserts user unless the key exists. The conflict branch is a no-op
// update so that RETURNING yields the stored row in the same round trip.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, error) {
	inventoryJSON, err := json.Marshal(user.Inventory)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inventory: %w", err)
	}
	warningsJSON, err := json.Marshal(user.Warnings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal warnings: %w", err)
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + userColumns

	stored, err := scanUser(r.q.QueryRow(ctx, query,
		user.UserID,
		user.GuildID,
		user.XP,
		user.Level,
		user.Balance,
		inventoryJSON,
		warningsJSON,
		user.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", user.Key(), err)
	}

	return stored, nil
}

// Update replaces the patched columns when at least one value differs
func (r *UserRepository) Update(ctx context.Context, key models.UserKey, update models.UserUpdate) (bool, error) {
	p := newPatchBuilder(key.UserID, key.GuildID)
	if xp, ok := update.XP.Get(); ok {
		p.set("xp", xp)
	}
	if level, ok := update.Level.Get(); ok {
		p.set("level", level)
	}
	if balance, ok := update.Balance.Get(); ok {
		p.set("balance", balance)
	}
	if p.empty() {
		return false, nil
	}

	query := `UPDATE users SET ` + p.assignments() + ` WHERE user_id = $1 AND guild_id = $2 AND (` + p.differences() + `)`

	result, err := r.q.Exec(ctx, query, p.args...)
	if err != nil {
		return false, fmt.Errorf("failed to update %s: %w", key, err)
	}

	return result.RowsAffected() > 0, nil
}

func counterColumn(counter models.UserCounter) (string, error) {
	switch counter {
	case models.CounterXP:
		return "xp", nil
	case models.CounterLevel:
		return "level", nil
	case models.CounterBalance:
		return "balance", nil
	}
	return "", fmt.Errorf("field %q cannot be incremented", counter)
}

// Increment applies delta to a numeric column atomically
func (r *UserRepository) Increment(ctx context.Context, key models.UserKey, counter models.UserCounter, delta int64) (bool, error) {
	column, err := counterColumn(counter)
	if err != nil {
		return false, err
	}
	if delta == 0 {
		return false, nil
	}

	query := fmt.Sprintf(`UPDATE users SET %[1]s = %[1]s + $3 WHERE user_id = $1 AND guild_id = $2`, column)

	result, err := r.q.Exec(ctx, query, key.UserID, key.GuildID, delta)
	if err != nil {
		return false, fmt.Errorf("failed to increment %s of %s: %w", column, key, err)
	}

	return result.RowsAffected() > 0, nil
}

// DeductBalance decrements the balance only when it covers amount
func (r *UserRepository) DeductBalance(ctx context.Context, key models.UserKey, amount int64) (bool, error) {
	return deductBalance(ctx, r.q, key, amount)
}

func deductBalance(ctx context.Context, q queryable, key models.UserKey, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance - $3
		WHERE user_id = $1 AND guild_id = $2 AND balance >= $3
	`

	result, err := q.Exec(ctx, query, key.UserID, key.GuildID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to deduct balance for %s: %w", key, err)
	}

	return result.RowsAffected() > 0, nil
}

var errTransferDeclined = errors.New("transfer declined")

// Transfer debits from and credits to inside one transaction.
// Both rows are locked in key order first so opposing transfers cannot deadlock.
func (r *UserRepository) Transfer(ctx context.Context, from, to models.UserKey, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		lock := `
			SELECT user_id FROM users
			WHERE (user_id = $1 AND guild_id = $2) OR (user_id = $3 AND guild_id = $4)
			ORDER BY guild_id, user_id
			FOR UPDATE
		`
		rows, err := tx.Query(ctx, lock, from.UserID, from.GuildID, to.UserID, to.GuildID)
		if err != nil {
			return fmt.Errorf("failed to lock transfer rows: %w", err)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to lock transfer rows: %w", err)
		}

		ok, err := deductBalance(ctx, tx, from, amount)
		if err != nil {
			return err
		}
		if !ok {
			return errTransferDeclined
		}

		credit := `UPDATE users SET balance = balance + $3 WHERE user_id = $1 AND guild_id = $2`
		result, err := tx.Exec(ctx, credit, to.UserID, to.GuildID, amount)
		if err != nil {
			return fmt.Errorf("failed to credit %s: %w", to, err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("recipient %s not found", to)
		}
		return nil
	})
	if errors.Is(err, errTransferDeclined) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// AppendItem appends one entry to the inventory array
func (r *UserRepository) AppendItem(ctx context.Context, key models.UserKey, item models.InventoryItem) (bool, error) {
	return r.appendJSON(ctx, key, "inventory", []models.InventoryItem{item})
}

// AppendWarning appends one entry to the warnings array
func (r *UserRepository) AppendWarning(ctx context.Context, key models.UserKey, warning models.Warning) (bool, error) {
	return r.appendJSON(ctx, key, "warnings", []models.Warning{warning})
}

func (r *UserRepository) appendJSON(ctx context.Context, key models.UserKey, column string, elements any) (bool, error) {
	payload, err := json.Marshal(elements)
	if err != nil {
		return false, fmt.Errorf("failed to marshal %s entry: %w", column, err)
	}

	query := fmt.Sprintf(`UPDATE users SET %[1]s = %[1]s || $3::jsonb WHERE user_id = $1 AND guild_id = $2`, column)

	result, err := r.q.Exec(ctx, query, key.UserID, key.GuildID, payload)
	if err != nil {
		return false, fmt.Errorf("failed to append to %s of %s: %w", column, key, err)
	}

	return result.RowsAffected() > 0, nil
}

// Leaderboard returns a guild's users ordered by xp descending
func (r *UserRepository) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE guild_id = $1
		ORDER BY xp DESC, user_id ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// patchBuilder assembles "col = $n" assignments plus the matching
// "col IS DISTINCT FROM $n" guard for a keyed UPDATE
type patchBuilder struct {
	args  []any
	sets  []string
	diffs []string
}

func newPatchBuilder(keyArgs ...any) *patchBuilder {
	return &patchBuilder{args: keyArgs}
}

func (p *patchBuilder) set(column string, value any) {
	p.args = append(p.args, value)
	n := len(p.args)
	p.sets = append(p.sets, fmt.Sprintf("%s = $%d", column, n))
	p.diffs = append(p.diffs, fmt.Sprintf("%s IS DISTINCT FROM $%d", column, n))
}

// raw adds an assignment with a caller-written expression; $N in both strings is the new argument
func (p *patchBuilder) raw(value any, assignment, difference string) {
	p.args = append(p.args, value)
	placeholder := fmt.Sprintf("$%d", len(p.args))
	p.sets = append(p.sets, strings.ReplaceAll(assignment, "$N", placeholder))
	p.diffs = append(p.diffs, strings.ReplaceAll(difference, "$N", placeholder))
}

func (p *patchBuilder) empty() bool {
	return len(p.sets) == 0
}

func (p *patchBuilder) assignments() string {
	return strings.Join(p.sets, ", ")
}

func (p *patchBuilder) differences() string {
	return strings.Join(p.diffs, " OR ")
}
