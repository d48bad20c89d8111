package mongodb

import (
	"context"
	"errors"
	"fmt"

	"logiq/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository implements service.UserRepository on MongoDB
type UserRepository struct {
	coll *mongo.Collection
}

func userFilter(key models.UserKey) bson.M {
	return bson.M{"user_id": key.UserID, "guild_id": key.GuildID}
}

// Get retrieves a user by key
func (r *UserRepository) Get(ctx context.Context, key models.UserKey) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, userFilter(key)).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return &user, nil
}

// CreateIfAbsent upserts with $setOnInsert so an existing document is never modified
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"xp":         user.XP,
		"level":      user.Level,
		"balance":    user.Balance,
		"inventory":  user.Inventory,
		"warnings":   user.Warnings,
		"created_at": user.CreatedAt,
	}}

	var stored models.User
	err := upsertOnce(ctx, r.coll, userFilter(user.Key()), update, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", user.Key(), err)
	}
	return &stored, nil
}

// Update replaces the patched fields; ModifiedCount is zero when every value already matched
func (r *UserRepository) Update(ctx context.Context, key models.UserKey, update models.UserUpdate) (bool, error) {
	set := bson.M{}
	if xp, ok := update.XP.Get(); ok {
		set["xp"] = xp
	}
	if level, ok := update.Level.Get(); ok {
		set["level"] = level
	}
	if balance, ok := update.Balance.Get(); ok {
		set["balance"] = balance
	}
	if len(set) == 0 {
		return false, nil
	}

	result, err := r.coll.UpdateOne(ctx, userFilter(key), bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update %s: %w", key, err)
	}
	return result.ModifiedCount > 0, nil
}

// Increment applies $inc to a numeric field
func (r *UserRepository) Increment(ctx context.Context, key models.UserKey, counter models.UserCounter, delta int64) (bool, error) {
	if !counter.Valid() {
		return false, fmt.Errorf("field %q cannot be incremented", counter)
	}
	if delta == 0 {
		return false, nil
	}

	result, err := r.coll.UpdateOne(ctx, userFilter(key), bson.M{"$inc": bson.M{string(counter): delta}})
	if err != nil {
		return false, fmt.Errorf("failed to increment %s of %s: %w", counter, key, err)
	}
	return result.ModifiedCount > 0, nil
}

// DeductBalance decrements only documents whose balance covers amount
func (r *UserRepository) DeductBalance(ctx context.Context, key models.UserKey, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	filter := userFilter(key)
	filter["balance"] = bson.M{"$gte": amount}

	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"balance": -amount}})
	if err != nil {
		return false, fmt.Errorf("failed to deduct balance for %s: %w", key, err)
	}
	return result.ModifiedCount > 0, nil
}

// Transfer debits then credits; a failed credit refunds the debit
func (r *UserRepository) Transfer(ctx context.Context, from, to models.UserKey, amount int64) (bool, error) {
	ok, err := r.DeductBalance(ctx, from, amount)
	if err != nil || !ok {
		return false, err
	}

	result, err := r.coll.UpdateOne(ctx, userFilter(to), bson.M{"$inc": bson.M{"balance": amount}})
	if err == nil && result.MatchedCount == 0 {
		err = fmt.Errorf("recipient %s not found", to)
	}
	if err != nil {
		if _, refundErr := r.coll.UpdateOne(ctx, userFilter(from), bson.M{"$inc": bson.M{"balance": amount}}); refundErr != nil {
			return false, fmt.Errorf("failed to refund %s after %v: %w", from, err, refundErr)
		}
		return false, fmt.Errorf("failed to credit %s: %w", to, err)
	}
	return true, nil
}

// AppendItem pushes one entry onto the inventory
func (r *UserRepository) AppendItem(ctx context.Context, key models.UserKey, item models.InventoryItem) (bool, error) {
	return r.push(ctx, key, "inventory", item)
}

// AppendWarning pushes one entry onto the warnings
func (r *UserRepository) AppendWarning(ctx context.Context, key models.UserKey, warning models.Warning) (bool, error) {
	return r.push(ctx, key, "warnings", warning)
}

func (r *UserRepository) push(ctx context.Context, key models.UserKey, field string, value any) (bool, error) {
	result, err := r.coll.UpdateOne(ctx, userFilter(key), bson.M{"$push": bson.M{field: value}})
	if err != nil {
		return false, fmt.Errorf("failed to append to %s of %s: %w", field, key, err)
	}
	return result.ModifiedCount > 0, nil
}

// Leaderboard returns a guild's users ordered by xp descending
func (r *UserRepository) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "xp", Value: -1}, {Key: "user_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"guild_id": guildID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for guild %d: %w", guildID, err)
	}

	users := []*models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return users, nil
}

// upsertOnce runs an upserting FindOneAndUpdate and decodes the resulting document.
// Two racing upserts can collide on the unique index; the loser retries and matches the winner's document.
func upsertOnce(ctx context.Context, coll *mongo.Collection, filter, update bson.M, out any) error {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	if mongo.IsDuplicateKeyError(err) {
		err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	}
	return err
}
