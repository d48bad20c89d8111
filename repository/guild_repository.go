package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"logiq/database"
	"logiq/models"

	"github.com/jackc/pgx/v5"
)

const guildColumns = `guild_id, prefix, modules, log_channel, welcome_channel, verified_role, verification_type, created_at`

// GuildRepository implements service.GuildRepository on PostgreSQL
type GuildRepository struct {
	q queryable
}

// NewGuildRepository creates a new guild repository
func NewGuildRepository(db *database.DB) *GuildRepository {
	return &GuildRepository{q: db.Pool}
}

func scanGuild(row pgx.Row) (*models.Guild, error) {
	var guild models.Guild
	var modulesJSON []byte
	var verificationType string

	err := row.Scan(
		&guild.GuildID,
		&guild.Prefix,
		&modulesJSON,
		&guild.LogChannel,
		&guild.WelcomeChannel,
		&guild.VerifiedRole,
		&verificationType,
		&guild.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	guild.Modules = map[string]bool{}
	if len(modulesJSON) > 0 {
		if err := json.Unmarshal(modulesJSON, &guild.Modules); err != nil {
			return nil, fmt.Errorf("failed to unmarshal modules: %w", err)
		}
	}
	guild.VerificationType = models.VerificationType(verificationType)

	return &guild, nil
}

// Get retrieves a guild's configuration
func (r *GuildRepository) Get(ctx context.Context, guildID int64) (*models.Guild, error) {
	query := `SELECT ` + guildColumns + ` FROM guilds WHERE guild_id = $1`

	guild, err := scanGuild(r.q.QueryRow(ctx, query, guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %d: %w", guildID, err)
	}

	return guild, nil
}

// CreateIfAbsent inserts guild unless it exists and returns the stored row
func (r *GuildRepository) CreateIfAbsent(ctx context.Context, guild *models.Guild) (*models.Guild, error) {
	modulesJSON, err := json.Marshal(guild.Modules)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal modules: %w", err)
	}

	query := `
		INSERT INTO guilds (` + guildColumns + `)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7, $8)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING ` + guildColumns

	stored, err := scanGuild(r.q.QueryRow(ctx, query,
		guild.GuildID,
		guild.Prefix,
		modulesJSON,
		guild.LogChannel,
		guild.WelcomeChannel,
		guild.VerifiedRole,
		string(guild.VerificationType),
		guild.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create guild %d: %w", guild.GuildID, err)
	}

	return stored, nil
}

// Update applies the patch; module flags are merged into the stored object
func (r *GuildRepository) Update(ctx context.Context, guildID int64, update models.GuildUpdate) (bool, error) {
	p := newPatchBuilder(guildID)
	if prefix, ok := update.Prefix.Get(); ok {
		p.set("prefix", prefix)
	}
	if len(update.ModuleFlags) > 0 {
		flagsJSON, err := json.Marshal(update.ModuleFlags)
		if err != nil {
			return false, fmt.Errorf("failed to marshal module flags: %w", err)
		}
		p.raw(flagsJSON, "modules = modules || $N::jsonb", "NOT (modules @> $N::jsonb)")
	}
	if ch, ok := update.LogChannel.Get(); ok {
		p.set("log_channel", ch)
	}
	if ch, ok := update.WelcomeChannel.Get(); ok {
		p.set("welcome_channel", ch)
	}
	if role, ok := update.VerifiedRole.Get(); ok {
		p.set("verified_role", role)
	}
	if vt, ok := update.VerificationType.Get(); ok {
		p.set("verification_type", string(vt))
	}
	if p.empty() {
		return false, nil
	}

	query := `UPDATE guilds SET ` + p.assignments() + ` WHERE guild_id = $1 AND (` + p.differences() + `)`

	result, err := r.q.Exec(ctx, query, p.args...)
	if err != nil {
		return false, fmt.Errorf("failed to update guild %d: %w", guildID, err)
	}

	return result.RowsAffected() > 0, nil
}
