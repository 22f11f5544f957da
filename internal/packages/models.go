package packages

import (
	"time"

	"github.com/google/uuid"
)

// PackageStatus is the lifecycle status of a lesson package.
type PackageStatus string

const (
	PackageActive    PackageStatus = "ACTIVE"
	PackageExhausted PackageStatus = "EXHAUSTED"
	PackageExpired   PackageStatus = "EXPIRED"
)

// Package represents a prepaid bundle of lessons for a student.
type Package struct {
	ID           uuid.UUID     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	StudentID    uuid.UUID     `json:"student_id" gorm:"type:uuid;not null;index"`
	Name         string        `json:"name" gorm:"not null"`
	TotalLessons int           `json:"total_lessons" gorm:"not null"`
	UsedLessons  int           `json:"used_lessons" gorm:"not null;default:0"`
	ExpiresAt    *time.Time    `json:"expires_at,omitempty"`
	Status       PackageStatus `json:"status" gorm:"not null;default:ACTIVE;index"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// RemainingLessons returns how many lessons are left on the package.
func (p *Package) RemainingLessons() int {
	remaining := p.TotalLessons - p.UsedLessons
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ExpiredAt reports whether the package is past its expiry at the given time.
func (p *Package) ExpiredAt(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// CreatePackageRequest is the payload for creating a package.
type CreatePackageRequest struct {
	StudentID    uuid.UUID  `json:"student_id" binding:"required"`
	Name         string     `json:"name" binding:"required"`
	TotalLessons int        `json:"total_lessons" binding:"required"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}
