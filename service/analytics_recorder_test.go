package service

import (
	"context"
	"testing"
	"time"

	"logiq/events"
	"logiq/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAnalyticsRecorder_RecordsEvents(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	recorder := NewAnalyticsRecorder(ConnectedGateway(store, testDefaults))

	store.AnalyticsRepo.On("Log", ctx, mock.MatchedBy(func(e *models.AnalyticsEvent) bool {
		return e.Type == models.EventCommandUsed && e.GuildID == 1 && *e.UserID == 2 &&
			e.Data["command"] == "purge" && e.Data["surface"] == "slash"
	})).Return(nil).Once()

	recorder.Handle(ctx, events.CommandUsedEvent{GuildID: 1, UserID: 2, Command: "purge", Surface: "slash"})
	store.AssertRepositories(t)
}

func TestAnalyticsRecorder_MemberJoinedKeepsJoinTime(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	recorder := NewAnalyticsRecorder(ConnectedGateway(store, testDefaults))
	joined := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	store.AnalyticsRepo.On("Log", ctx, mock.MatchedBy(func(e *models.AnalyticsEvent) bool {
		return e.Type == models.EventMemberJoined && e.Timestamp.Equal(joined)
	})).Return(nil).Once()

	recorder.Handle(ctx, events.MemberJoinedEvent{GuildID: 1, UserID: 2, JoinedAt: joined})
	store.AssertRepositories(t)
}

func TestAnalyticsRecorder_IgnoresUnavailablePersistence(t *testing.T) {
	g := NewGateway(func(ctx context.Context) (Store, error) { return nil, assert.AnError }, testDefaults)
	recorder := NewAnalyticsRecorder(g)

	assert.NotPanics(t, func() {
		recorder.Handle(context.Background(), events.LevelUpEvent{GuildID: 1, UserID: 2, NewLevel: 3})
	})
}

func TestAnalyticsRecorder_RegisterSubscribesToBus(t *testing.T) {
	store := NewMockStore()
	recorder := NewAnalyticsRecorder(ConnectedGateway(store, testDefaults))
	bus := events.NewBus()
	recorder.Register(bus)

	store.AnalyticsRepo.On("Log", mock.Anything, mock.MatchedBy(func(e *models.AnalyticsEvent) bool {
		return e.Type == models.EventWarningIssued
	})).Return(nil).Once()

	bus.Emit(context.Background(), events.WarningIssuedEvent{GuildID: 1, UserID: 2, Reason: "spam"})
	bus.Wait()
	store.AssertRepositories(t)
}
