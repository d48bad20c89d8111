package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"logiq/events"
	"logiq/models"
)

// cooldownPruneThreshold bounds the cooldown map before stale entries are swept
const cooldownPruneThreshold = 10000

// LevelProgress describes the outcome of one message XP award
type LevelProgress struct {
	User      *models.User
	Awarded   bool
	LeveledUp bool
	OldLevel  int
	NewLevel  int
}

type levelingService struct {
	gateway      *Gateway
	publisher    EventPublisher
	xpPerMessage int64
	cooldown     time.Duration
	now          func() time.Time

	mu        sync.Mutex
	lastAward map[models.UserKey]time.Time
}

// NewLevelingService creates the message XP service
func NewLevelingService(gateway *Gateway, publisher EventPublisher, xpPerMessage int64, cooldown time.Duration) Leveling {
	return &levelingService{
		gateway:      gateway,
		publisher:    publisher,
		xpPerMessage: xpPerMessage,
		cooldown:     cooldown,
		now:          time.Now,
		lastAward:    make(map[models.UserKey]time.Time),
	}
}

// AwardMessageXP grants xpPerMessage once per cooldown window per member and
// stores the level derived from the new total, publishing a LevelUpEvent when it rises
func (s *levelingService) AwardMessageXP(ctx context.Context, key models.UserKey, channelID int64) (*LevelProgress, error) {
	if !s.gateway.IsConnected() {
		return nil, ErrPersistenceUnavailable
	}
	if !s.claim(key) {
		return &LevelProgress{}, nil
	}

	if _, err := s.gateway.GetOrCreateUser(ctx, key); err != nil {
		s.release(key)
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if _, err := s.gateway.IncrementUser(ctx, key, models.CounterXP, s.xpPerMessage); err != nil {
		s.release(key)
		return nil, fmt.Errorf("failed to award xp to %s: %w", key, err)
	}

	user, err := s.gateway.GetUser(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to reload %s: %w", key, err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	progress := &LevelProgress{
		User:     user,
		Awarded:  true,
		OldLevel: user.Level,
		NewLevel: models.LevelForXP(user.XP),
	}
	if progress.NewLevel <= progress.OldLevel {
		return progress, nil
	}

	if _, err := s.gateway.UpdateUser(ctx, key, models.UserUpdate{Level: models.Set(progress.NewLevel)}); err != nil {
		return nil, fmt.Errorf("failed to store level for %s: %w", key, err)
	}
	user.Level = progress.NewLevel
	progress.LeveledUp = true

	s.publisher.Emit(ctx, events.LevelUpEvent{
		GuildID:   key.GuildID,
		UserID:    key.UserID,
		ChannelID: channelID,
		OldLevel:  progress.OldLevel,
		NewLevel:  progress.NewLevel,
		XP:        user.XP,
	})
	return progress, nil
}

// Reset forgets every cooldown
func (s *levelingService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAward = make(map[models.UserKey]time.Time)
}

// claim records an award for key unless its cooldown is still running
func (s *levelingService) claim(key models.UserKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.lastAward[key]; ok && now.Sub(last) < s.cooldown {
		return false
	}
	if len(s.lastAward) >= cooldownPruneThreshold {
		for k, t := range s.lastAward {
			if now.Sub(t) >= s.cooldown {
				delete(s.lastAward, k)
			}
		}
	}
	s.lastAward[key] = now
	return true
}

func (s *levelingService) release(key models.UserKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lastAward, key)
}
