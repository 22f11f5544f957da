package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification channels
const (
	ChannelInApp     = "IN_APP"
	ChannelWebSocket = "WEBSOCKET"
	ChannelEmail     = "EMAIL"
)

// Delivery statuses
const (
	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

// Notification types
const (
	TypeLessonStatusChange = "LESSON_STATUS_CHANGE"
	TypeGroupStatusChange  = "GROUP_LESSON_STATUS_CHANGE"
)

// Notification is an in-app notification stored for a recipient.
type Notification struct {
	ID            uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	RecipientID   uuid.UUID      `json:"recipient_id" gorm:"type:uuid;not null;index"`
	Type          string         `json:"type" gorm:"not null"`
	Title         string         `json:"title" gorm:"not null"`
	Message       string         `json:"message" gorm:"not null"`
	LessonID      *uuid.UUID     `json:"lesson_id,omitempty" gorm:"type:uuid"`
	GroupLessonID *uuid.UUID     `json:"group_lesson_id,omitempty" gorm:"type:uuid"`
	Metadata      datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	ReadAt        *time.Time     `json:"read_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// DeliveryLog tracks one delivery attempt per channel.
type DeliveryLog struct {
	ID             uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	NotificationID uuid.UUID `json:"notification_id" gorm:"type:uuid;not null;index"`
	Channel        string    `json:"channel" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	Timestamp      time.Time `json:"timestamp" gorm:"autoCreateTime"`
}
