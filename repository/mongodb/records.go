package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logiq/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TicketRepository implements service.TicketRepository on MongoDB.
// counters holds one document per member with the number of open tickets.
type TicketRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func counterID(guildID, userID int64) string {
	return fmt.Sprintf("%d:%d", guildID, userID)
}

// Create stores ticket under a new ID unless the member already has maxOpen open tickets.
// maxOpen <= 0 disables the cap. The slot is claimed with a conditional $inc before the insert.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket, maxOpen int) (bool, error) {
	id := counterID(ticket.GuildID, ticket.UserID)

	_, err := r.counters.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$setOnInsert": bson.M{"open": 0}}, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("failed to prepare ticket counter: %w", err)
	}

	filter := bson.M{"_id": id}
	if maxOpen > 0 {
		filter["open"] = bson.M{"$lt": maxOpen}
	}
	result, err := r.counters.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"open": 1}})
	if err != nil {
		return false, fmt.Errorf("failed to claim ticket slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return false, nil
	}

	ticket.ID = uuid.NewString()
	if _, err := r.coll.InsertOne(ctx, ticket); err != nil {
		ticket.ID = ""
		if _, releaseErr := r.release(ctx, ticket.GuildID, ticket.UserID); releaseErr != nil {
			return false, fmt.Errorf("failed to release ticket slot after %v: %w", err, releaseErr)
		}
		return false, fmt.Errorf("failed to create ticket: %w", err)
	}
	return true, nil
}

func (r *TicketRepository) release(ctx context.Context, guildID, userID int64) (*mongo.UpdateResult, error) {
	return r.counters.UpdateOne(ctx,
		bson.M{"_id": counterID(guildID, userID), "open": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"open": -1}})
}

// Get retrieves a ticket by ID
func (r *TicketRepository) Get(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", id, err)
	}
	return &ticket, nil
}

// Update applies the patch. A status change moves the member's open counter with it.
func (r *TicketRepository) Update(ctx context.Context, id string, update models.TicketUpdate) (bool, error) {
	set := bson.M{}
	if closedAt, ok := update.ClosedAt.Get(); ok {
		set["closed_at"] = closedAt
	}

	status, hasStatus := update.Status.Get()
	if hasStatus {
		set["status"] = string(status)

		var before models.Ticket
		err := r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": id, "status": bson.M{"$ne": string(status)}},
			bson.M{"$set": set},
		).Decode(&before)
		switch {
		case err == nil:
			if err := r.moveCounter(ctx, &before, status); err != nil {
				return true, err
			}
			return true, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			return false, fmt.Errorf("failed to update ticket %s: %w", id, err)
		}
		// Status already matches; apply the remaining fields alone
		delete(set, "status")
	}
	if len(set) == 0 {
		return false, nil
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update ticket %s: %w", id, err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *TicketRepository) moveCounter(ctx context.Context, before *models.Ticket, status models.TicketStatus) error {
	var err error
	switch {
	case before.Status == models.TicketStatusOpen && status != models.TicketStatusOpen:
		_, err = r.release(ctx, before.GuildID, before.UserID)
	case before.Status != models.TicketStatusOpen && status == models.TicketStatusOpen:
		_, err = r.counters.UpdateOne(ctx, bson.M{"_id": counterID(before.GuildID, before.UserID)},
			bson.M{"$inc": bson.M{"open": 1}}, options.Update().SetUpsert(true))
	}
	if err != nil {
		return fmt.Errorf("failed to update ticket counter for %s: %w", before.ID, err)
	}
	return nil
}

// ListOpen returns a member's open tickets, oldest first
func (r *TicketRepository) ListOpen(ctx context.Context, guildID, userID int64) ([]*models.Ticket, error) {
	filter := bson.M{"guild_id": guildID, "user_id": userID, "status": string(models.TicketStatusOpen)}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}

	tickets := []*models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("failed to decode tickets: %w", err)
	}
	return tickets, nil
}

// ReminderRepository implements service.ReminderRepository on MongoDB
type ReminderRepository struct {
	coll *mongo.Collection
}

// Create stores reminder under a new ID
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	reminder.ID = uuid.NewString()
	if _, err := r.coll.InsertOne(ctx, reminder); err != nil {
		reminder.ID = ""
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// ListDue returns incomplete reminders with remind_at <= t, oldest first
func (r *ReminderRepository) ListDue(ctx context.Context, t time.Time, limit int) ([]*models.Reminder, error) {
	filter := bson.M{"remind_at": bson.M{"$lte": t}, "completed": false}
	opts := options.Find().SetSort(bson.D{{Key: "remind_at", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}

	reminders := []*models.Reminder{}
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return reminders, nil
}

// Complete marks a pending reminder done
func (r *ReminderRepository) Complete(ctx context.Context, id string) (bool, error) {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "completed": false}, bson.M{"$set": bson.M{"completed": true}})
	if err != nil {
		return false, fmt.Errorf("failed to complete reminder %s: %w", id, err)
	}
	return result.ModifiedCount > 0, nil
}

// ShopRepository implements service.ShopRepository on MongoDB
type ShopRepository struct {
	coll *mongo.Collection
}

// List returns a guild's items in listing order
func (r *ShopRepository) List(ctx context.Context, guildID int64, limit int) ([]*models.ShopItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{"guild_id": guildID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items for guild %d: %w", guildID, err)
	}

	items := []*models.ShopItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode shop items: %w", err)
	}
	return items, nil
}

// Create stores item under a new ID
func (r *ShopRepository) Create(ctx context.Context, item *models.ShopItem) error {
	item.ID = uuid.NewString()
	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		item.ID = ""
		return fmt.Errorf("failed to create shop item: %w", err)
	}
	return nil
}

// Get retrieves an item by ID
func (r *ShopRepository) Get(ctx context.Context, id string) (*models.ShopItem, error) {
	var item models.ShopItem
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop item %s: %w", id, err)
	}
	return &item, nil
}

// AnalyticsRepository implements service.AnalyticsRepository on MongoDB
type AnalyticsRepository struct {
	coll *mongo.Collection
}

// Log stores event under a new ID
func (r *AnalyticsRepository) Log(ctx context.Context, event *models.AnalyticsEvent) error {
	event.ID = uuid.NewString()
	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		event.ID = ""
		return fmt.Errorf("failed to log %s event: %w", event.Type, err)
	}
	return nil
}

// Query returns matching events newest first
func (r *AnalyticsRepository) Query(ctx context.Context, filter models.AnalyticsFilter, limit int) ([]*models.AnalyticsEvent, error) {
	query := bson.M{"guild_id": filter.GuildID}
	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}
	window := bson.M{}
	if !filter.From.IsZero() {
		window["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		window["$lte"] = filter.To
	}
	if len(window) > 0 {
		query["timestamp"] = window
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query analytics for guild %d: %w", filter.GuildID, err)
	}

	result := []*models.AnalyticsEvent{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode analytics events: %w", err)
	}
	return result, nil
}
