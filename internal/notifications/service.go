package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tutor-school/crm-portal/crm-portal-backend/internal/notifications/websocket"
	"tutor-school/crm-portal/crm-portal-backend/internal/scheduling"
)

// RecipientDirectory resolves a recipient's email address for the email
// channel. An empty address means the channel is skipped.
type RecipientDirectory interface {
	EmailFor(ctx context.Context, userID uuid.UUID) (string, error)
}

// Service creates and dispatches notifications. Dispatch is best-effort: a
// channel failure is logged and never propagated to the transition that
// produced the notification.
type Service struct {
	db        *gorm.DB
	wsManager *websocket.Manager
	email     *EmailSender
	directory RecipientDirectory
	logger    *zap.Logger
}

// NewService creates the notification service. email may be nil when the
// email channel is disabled.
func NewService(db *gorm.DB, wsManager *websocket.Manager, email *EmailSender, directory RecipientDirectory, logger *zap.Logger) *Service {
	return &Service{
		db:        db,
		wsManager: wsManager,
		email:     email,
		directory: directory,
		logger:    logger,
	}
}

// NotifyStatusChange notifies a student that an individual lesson moved from
// one status to another.
func (s *Service) NotifyStatusChange(ctx context.Context, recipientID, lessonID uuid.UUID, from, to scheduling.LessonStatus, reason string) error {
	n := &Notification{
		RecipientID: recipientID,
		Type:        TypeLessonStatusChange,
		Title:       "Lesson status updated",
		Message:     statusChangeMessage(string(from), string(to), reason),
		LessonID:    &lessonID,
		Metadata: mustJSON(map[string]string{
			"old_status": string(from),
			"new_status": string(to),
		}),
	}
	return s.dispatch(ctx, n)
}

// NotifyGroupStatusChange notifies every participant of a group lesson.
// Per-recipient failures are contained; the remaining recipients are still
// notified.
func (s *Service) NotifyGroupStatusChange(ctx context.Context, recipientIDs []uuid.UUID, groupLessonID uuid.UUID, from, to scheduling.GroupLessonStatus, reason string) error {
	var failed int
	for _, recipientID := range recipientIDs {
		n := &Notification{
			RecipientID:   recipientID,
			Type:          TypeGroupStatusChange,
			Title:         "Group lesson status updated",
			Message:       statusChangeMessage(string(from), string(to), reason),
			GroupLessonID: &groupLessonID,
			Metadata: mustJSON(map[string]string{
				"old_status": string(from),
				"new_status": string(to),
			}),
		}
		if err := s.dispatch(ctx, n); err != nil {
			failed++
			s.logger.Warn("Failed to notify group lesson participant",
				zap.String("recipient_id", recipientID.String()),
				zap.Error(err))
		}
	}
	if failed == len(recipientIDs) && failed > 0 {
		return fmt.Errorf("failed to notify all %d participants", failed)
	}
	return nil
}

// ListForUser retrieves a recipient's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]Notification, error) {
	var result []Notification
	err := s.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return result, nil
}

// MarkAsRead marks a notification as read.
func (s *Service) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND read_at IS NULL", notificationID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// dispatch stores the in-app notification and pushes it over the remaining
// channels, logging a delivery record per channel.
func (s *Service) dispatch(ctx context.Context, n *Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.logDelivery(ctx, n.ID, ChannelInApp, nil)

	if s.wsManager != nil {
		err := s.wsManager.SendToUser(n.RecipientID, websocket.Message{
			Type: n.Type,
			Data: map[string]any{
				"notification_id": n.ID.String(),
				"title":           n.Title,
				"message":         n.Message,
			},
			Timestamp: time.Now(),
		})
		s.logDelivery(ctx, n.ID, ChannelWebSocket, err)
	}

	if s.email != nil {
		err := s.sendEmail(ctx, n)
		s.logDelivery(ctx, n.ID, ChannelEmail, err)
	}

	return nil
}

func (s *Service) sendEmail(ctx context.Context, n *Notification) error {
	address, err := s.directory.EmailFor(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient email: %w", err)
	}
	if address == "" {
		return nil
	}
	return s.email.Send(address, n.Title, n.Message)
}

func (s *Service) logDelivery(ctx context.Context, notificationID uuid.UUID, channel string, deliveryErr error) {
	entry := &DeliveryLog{
		NotificationID: notificationID,
		Channel:        channel,
		Status:         StatusSent,
	}
	if deliveryErr != nil {
		entry.Status = StatusFailed
		entry.ErrorMessage = deliveryErr.Error()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		s.logger.Warn("Failed to write delivery log", zap.Error(err))
	}
}

func statusChangeMessage(from, to, reason string) string {
	msg := fmt.Sprintf("%s -> %s", from, to)
	if reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, reason)
	}
	return msg
}

func mustJSON(v any) datatypes.JSON {
	data, _ := json.Marshal(v)
	return datatypes.JSON(data)
}
