package gormstore

import (
	"context"

	"gorm.io/gorm"

	"student-records/internal/domain"
	"student-records/internal/repository"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) repository.AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Init(ctx context.Context) error {
	return wrapGormError("migrate admins", r.db.WithContext(ctx).AutoMigrate(&adminModel{}))
}

func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) (int64, error) {
	m := adminModel{Username: admin.Username, PasswordHash: admin.PasswordHash}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, wrapGormError("insert admin", err)
	}
	admin.ID = m.ID
	admin.CreatedAt = m.CreatedAt
	return m.ID, nil
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var m adminModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		return nil, wrapGormError("get admin", err)
	}
	return &domain.Admin{ID: m.ID, Username: m.Username, PasswordHash: m.PasswordHash, CreatedAt: m.CreatedAt}, nil
}

func (r *AdminRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&adminModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, wrapGormError("admin exists", err)
	}
	return count > 0, nil
}
