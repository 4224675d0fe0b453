// Package notify persists in-app notifications and fans them out to
// connected clients over Redis pub/sub, one channel per user.
package notify

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/miniats/miniats/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const channelPrefix = "notifications:user:"

type Notifier struct {
	DB    *gorm.DB
	Redis *redis.Client
	Log   *zap.Logger
}

func NewNotifier(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *Notifier {
	return &Notifier{DB: db, Redis: rdb, Log: log}
}

// Send persists the notification, then publishes it to the owning user's
// channel. Fan-out is best effort: a Redis failure is logged and the row
// still stands, clients reconcile on next list.
func (n *Notifier) Send(ctx context.Context, notification *models.Notification) error {
	if err := n.DB.Create(notification).Error; err != nil {
		return err
	}

	if n.Redis == nil {
		return nil
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	if err := n.Redis.Publish(ctx, channelPrefix+notification.UserID, payload).Err(); err != nil {
		n.Log.Warn("notification fan-out failed",
			zap.String("user_id", notification.UserID),
			zap.Error(err))
	}
	return nil
}

// SendToRole notifies every company user holding one of the given roles.
func (n *Notifier) SendToRole(ctx context.Context, companyID string, roles []string, build func(userID string) *models.Notification) error {
	var users []models.User
	err := n.DB.Where("company_id = ? AND role IN ?", companyID, roles).Find(&users).Error
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := n.Send(ctx, build(u.ID)); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe opens the user's push channel. The caller owns the returned
// subscription and must Close it on teardown.
func (n *Notifier) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return n.Redis.Subscribe(ctx, channelPrefix+userID)
}

// List returns the user's latest notifications, newest first.
func (n *Notifier) List(userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := n.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// UnreadCount is the authoritative server-side counter clients reconcile
// against.
func (n *Notifier) UnreadCount(userID string) (int64, error) {
	var count int64
	err := n.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips one notification; the user filter keeps sessions from
// touching other users' rows.
func (n *Notifier) MarkRead(userID, notificationID string) error {
	return n.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true).Error
}

// MarkAllRead flips every unread notification for the user.
func (n *Notifier) MarkAllRead(userID string) error {
	return n.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
