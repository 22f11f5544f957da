package teachers

import (
	"time"

	"github.com/google/uuid"
)

// Teacher is a CRM record for a tutor on staff.
type Teacher struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex"`
	Phone     string    `json:"phone,omitempty"`
	Subjects  string    `json:"subjects,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// CreateTeacherRequest is the payload for creating a teacher record.
type CreateTeacherRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone,omitempty"`
	Subjects  string `json:"subjects,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// UpdateTeacherRequest carries partial updates to a teacher record.
type UpdateTeacherRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Subjects  *string `json:"subjects,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}
