package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"student-records/internal/domain"
	"student-records/internal/repository"
)

const createAdminsTable = `
CREATE TABLE IF NOT EXISTS admins (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) repository.AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAdminsTable); err != nil {
		return fmt.Errorf("create admins table: %w", err)
	}
	return nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) (int64, error) {
	admin.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO admins (username, password_hash, created_at)
VALUES (?, ?, ?)`,
		admin.Username,
		admin.PasswordHash,
		admin.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert admin %q: %w", admin.Username, repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert admin: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("admin last insert id: %w", err)
	}
	admin.ID = id
	return id, nil
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, password_hash, created_at
FROM admins
WHERE username = ?`,
		username,
	)

	var admin domain.Admin
	if err := row.Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return &admin, nil
}

func (r *AdminRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM admins WHERE username = ?)`, username).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("admin exists: %w", err)
	}
	return found, nil
}
