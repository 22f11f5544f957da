package students

import (
	"context"

	"github.com/google/uuid"
)

// Service implements student record management.
type Service interface {
	Create(ctx context.Context, req CreateStudentRequest) (*Student, error)
	Get(ctx context.Context, id uuid.UUID) (*Student, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateStudentRequest) (*Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]Student, error)
}

type service struct {
	repo Repository
}

// NewService creates the student service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateStudentRequest) (*Student, error) {
	student := &Student{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Level:     req.Level,
		Notes:     req.Notes,
		Active:    true,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Student, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateStudentRequest) (*Student, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		student.LastName = *req.LastName
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.Level != nil {
		student.Level = *req.Level
	}
	if req.Notes != nil {
		student.Notes = *req.Notes
	}
	if req.Active != nil {
		student.Active = *req.Active
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]Student, error) {
	return s.repo.List(ctx, activeOnly)
}
