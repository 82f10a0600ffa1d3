package gormstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"student-records/internal/domain"
	"student-records/internal/repository"
)

// MySQL error numbers the store reacts to.
const (
	errDuplicateEntry = 1062
)

// Open connects to MySQL through gorm. dsn uses the go-sql-driver format.
func Open(dsn string) (*gorm.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{DSNConfig: cfg}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql db: %w", err)
	}
	return db, nil
}

// studentModel maps domain.Student onto the students table.
type studentModel struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Username string `gorm:"type:varchar(191) COLLATE utf8mb4_bin;uniqueIndex;not null"`
	Level    string `gorm:"type:varchar(16);index;not null"`
}

func (studentModel) TableName() string {
	return "students"
}

func (m studentModel) toDomain() domain.Student {
	return domain.Student{ID: m.ID, Username: m.Username, Level: domain.Level(m.Level)}
}

type adminModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:varchar(191) COLLATE utf8mb4_bin;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (adminModel) TableName() string {
	return "admins"
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// wrapGormError maps driver failures onto repository sentinels.
func wrapGormError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	case isDuplicateError(err):
		return fmt.Errorf("%s: %w", op, repository.ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

var sortColumns = map[domain.SortKey]string{
	domain.SortByID:       "id",
	domain.SortByUsername: "username",
	domain.SortByLevel:    "level",
}

// orderBy renders the ORDER BY clause; ties on the sort key fall back to id ascending.
func orderBy(req domain.PageRequest) string {
	column, ok := sortColumns[req.SortBy]
	if !ok {
		column = "id"
	}
	direction := "ASC"
	if req.Direction == domain.SortDesc {
		direction = "DESC"
	}
	if column == "id" {
		return "id " + direction
	}
	return column + " " + direction + ", id ASC"
}
