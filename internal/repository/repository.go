package repository

import (
	"context"
	"errors"

	"student-records/internal/domain"
)

var (
	// ErrNotFound is returned when no row matches the requested key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// StudentRepository exposes persistence operations for Student records.
// Create and Update rely on the store's unique index on username and return
// ErrDuplicate when it rejects the write.
type StudentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, student *domain.Student) (int64, error)
	Update(ctx context.Context, student *domain.Student) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Student, error)
	GetByUsername(ctx context.Context, username string) (*domain.Student, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Student], error)
	ListByLevel(ctx context.Context, level domain.Level, req domain.PageRequest) (domain.Page[domain.Student], error)
	Search(ctx context.Context, query string, req domain.PageRequest) (domain.Page[domain.Student], error)
}

// AdminRepository defines persistence operations for Admin accounts.
type AdminRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, admin *domain.Admin) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
