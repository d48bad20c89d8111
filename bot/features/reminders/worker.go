package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logiq/bot/common"
	"logiq/models"
	"logiq/service"

	log "github.com/sirupsen/logrus"
)

// Worker delivers due reminders on a fixed interval
type Worker struct {
	reminders ReminderStore
	notifier  common.Notifier
	interval  time.Duration
	now       func() time.Time
}

func NewWorker(reminders ReminderStore, notifier common.Notifier, interval time.Duration) *Worker {
	return &Worker{
		reminders: reminders,
		notifier:  notifier,
		interval:  interval,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithField("interval", w.interval).Info("Reminder worker started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			if _, err := w.Poll(ctx); err != nil {
				log.WithError(err).Error("Reminder poll failed")
			}
		}
	}
}

// Poll delivers every reminder that is due now and returns how many were delivered.
// An unavailable gateway skips the tick.
func (w *Worker) Poll(ctx context.Context) (int, error) {
	due, err := w.reminders.DueReminders(ctx, w.now())
	if errors.Is(err, service.ErrPersistenceUnavailable) {
		log.Debug("Skipping reminder poll while persistence is unavailable")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load due reminders: %w", err)
	}

	delivered := 0
	for _, reminder := range due {
		err := w.deliver(ctx, reminder)
		if errors.Is(err, errUndeliverable) {
			continue
		}
		if err != nil {
			log.WithError(err).WithField("reminder_id", reminder.ID).Warn("Failed to deliver reminder")
			continue
		}
		delivered++
	}
	return delivered, nil
}

// errUndeliverable marks a reminder completed without being posted
var errUndeliverable = errors.New("reminder undeliverable")

// deliver posts the reminder, then marks it completed. A transient failure leaves it due for
// the next tick; a permanent one completes it so it stops holding a due slot.
func (w *Worker) deliver(ctx context.Context, reminder *models.Reminder) error {
	embed := common.NewEmbed("⏰ Reminder", common.ColorInfo)
	embed.Description = fmt.Sprintf("%s %s", common.UserMention(reminder.UserID), reminder.Message)

	notifyErr := w.notifier.Notify(ctx, reminder.ChannelID, embed)
	if notifyErr != nil && !common.IsPermanentDeliveryError(notifyErr) {
		return notifyErr
	}

	if _, err := w.reminders.CompleteReminder(ctx, reminder.ID); err != nil {
		return fmt.Errorf("failed to complete reminder: %w", err)
	}
	if notifyErr != nil {
		log.WithError(notifyErr).WithFields(log.Fields{
			"reminder_id": reminder.ID,
			"channel_id":  reminder.ChannelID,
		}).Warn("Dropped undeliverable reminder")
		return errUndeliverable
	}
	return nil
}
