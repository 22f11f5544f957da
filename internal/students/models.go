package students

import (
	"time"

	"github.com/google/uuid"
)

// Student is a CRM record for an enrolled student.
type Student struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Email     string    `json:"email" gorm:"not null;uniqueIndex"`
	Phone     string    `json:"phone,omitempty"`
	Level     string    `json:"level,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// CreateStudentRequest is the payload for creating a student record.
type CreateStudentRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone,omitempty"`
	Level     string `json:"level,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// UpdateStudentRequest carries partial updates to a student record.
type UpdateStudentRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Level     *string `json:"level,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}
