package mongodb

import (
	"context"
	"errors"
	"fmt"

	"logiq/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// GuildRepository implements service.GuildRepository on MongoDB
type GuildRepository struct {
	coll *mongo.Collection
}

// Get retrieves a guild's configuration
func (r *GuildRepository) Get(ctx context.Context, guildID int64) (*models.Guild, error) {
	var guild models.Guild
	err := r.coll.FindOne(ctx, bson.M{"guild_id": guildID}).Decode(&guild)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %d: %w", guildID, err)
	}
	normalizeGuild(&guild)
	return &guild, nil
}

// CreateIfAbsent upserts the guild in one round trip without touching an existing document
func (r *GuildRepository) CreateIfAbsent(ctx context.Context, guild *models.Guild) (*models.Guild, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"prefix":            guild.Prefix,
		"modules":           guild.Modules,
		"log_channel":       guild.LogChannel,
		"welcome_channel":   guild.WelcomeChannel,
		"verified_role":     guild.VerifiedRole,
		"verification_type": string(guild.VerificationType),
		"created_at":        guild.CreatedAt,
	}}

	var stored models.Guild
	if err := upsertOnce(ctx, r.coll, bson.M{"guild_id": guild.GuildID}, update, &stored); err != nil {
		return nil, fmt.Errorf("failed to create guild %d: %w", guild.GuildID, err)
	}
	normalizeGuild(&stored)
	return &stored, nil
}

// Update applies the patch; each module flag is set under its own path so flags merge
func (r *GuildRepository) Update(ctx context.Context, guildID int64, update models.GuildUpdate) (bool, error) {
	set := bson.M{}
	if prefix, ok := update.Prefix.Get(); ok {
		set["prefix"] = prefix
	}
	for name, enabled := range update.ModuleFlags {
		set["modules."+name] = enabled
	}
	if ch, ok := update.LogChannel.Get(); ok {
		set["log_channel"] = ch
	}
	if ch, ok := update.WelcomeChannel.Get(); ok {
		set["welcome_channel"] = ch
	}
	if role, ok := update.VerifiedRole.Get(); ok {
		set["verified_role"] = role
	}
	if vt, ok := update.VerificationType.Get(); ok {
		set["verification_type"] = string(vt)
	}
	if len(set) == 0 {
		return false, nil
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"guild_id": guildID}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update guild %d: %w", guildID, err)
	}
	return result.ModifiedCount > 0, nil
}

// normalizeGuild fills fields older documents may lack
func normalizeGuild(guild *models.Guild) {
	if guild.Modules == nil {
		guild.Modules = map[string]bool{}
	}
	if guild.VerificationType == "" {
		guild.VerificationType = models.DefaultVerificationType
	}
}
