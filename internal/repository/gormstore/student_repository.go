package gormstore

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"student-records/internal/domain"
	"student-records/internal/repository"
)

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) repository.StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Init(ctx context.Context) error {
	return wrapGormError("migrate students", r.db.WithContext(ctx).AutoMigrate(&studentModel{}))
}

func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) (int64, error) {
	m := studentModel{Username: student.Username, Level: string(student.Level)}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, wrapGormError("insert student", err)
	}
	student.ID = m.ID
	return m.ID, nil
}

func (r *StudentRepository) Update(ctx context.Context, student *domain.Student) error {
	res := r.db.WithContext(ctx).Model(&studentModel{}).
		Where("id = ?", student.ID).
		Updates(map[string]interface{}{
			"username": student.Username,
			"level":    string(student.Level),
		})
	if res.Error != nil {
		return wrapGormError("update student", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows for an unchanged row too
		exists, err := r.ExistsByID(ctx, student.ID)
		if err != nil {
			return err
		}
		if !exists {
			return wrapGormError("update student", gorm.ErrRecordNotFound)
		}
	}
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&studentModel{}, id)
	if res.Error != nil {
		return wrapGormError("delete student", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapGormError("delete student", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	var m studentModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, wrapGormError("get student", err)
	}
	student := m.toDomain()
	return &student, nil
}

func (r *StudentRepository) GetByUsername(ctx context.Context, username string) (*domain.Student, error) {
	var m studentModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		return nil, wrapGormError("get student by username", err)
	}
	student := m.toDomain()
	return &student, nil
}

func (r *StudentRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&studentModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrapGormError("student exists", err)
	}
	return count > 0, nil
}

func (r *StudentRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&studentModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, wrapGormError("student exists", err)
	}
	return count > 0, nil
}

func (r *StudentRepository) List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Student], error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&studentModel{}), req)
}

func (r *StudentRepository) ListByLevel(ctx context.Context, level domain.Level, req domain.PageRequest) (domain.Page[domain.Student], error) {
	q := r.db.WithContext(ctx).Model(&studentModel{}).Where("level = ?", string(level))
	return r.page(ctx, q, req)
}

func (r *StudentRepository) Search(ctx context.Context, query string, req domain.PageRequest) (domain.Page[domain.Student], error) {
	q := r.db.WithContext(ctx).Model(&studentModel{}).Scopes(searchScope(query))
	return r.page(ctx, q, req)
}

// searchScope uses LOCATE so the query is matched literally, without LIKE wildcards.
func searchScope(query string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOCATE(?, LOWER(username)) > 0 OR LOCATE(?, CAST(id AS CHAR)) > 0", strings.ToLower(query), query)
	}
}

func (r *StudentRepository) page(ctx context.Context, q *gorm.DB, req domain.PageRequest) (domain.Page[domain.Student], error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return domain.Page[domain.Student]{}, wrapGormError("count students", err)
	}

	var models []studentModel
	err := q.Session(&gorm.Session{}).
		Order(orderBy(req)).
		Limit(req.Size).
		Offset(req.Offset()).
		Find(&models).Error
	if err != nil {
		return domain.Page[domain.Student]{}, wrapGormError("list students", err)
	}

	students := make([]domain.Student, len(models))
	for i := range models {
		students[i] = models[i].toDomain()
	}
	return domain.NewPage(students, total, req), nil
}
