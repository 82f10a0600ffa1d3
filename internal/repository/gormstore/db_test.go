package gormstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"student-records/internal/domain"
	"student-records/internal/repository"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/students?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestWrapGormError(t *testing.T) {
	assert.NoError(t, wrapGormError("op", nil))
	assert.ErrorIs(t, wrapGormError("op", gorm.ErrRecordNotFound), repository.ErrNotFound)
	assert.ErrorIs(t, wrapGormError("op", gorm.ErrDuplicatedKey), repository.ErrDuplicate)

	dup := fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})
	assert.ErrorIs(t, wrapGormError("insert student", dup), repository.ErrDuplicate)

	other := errors.New("connection reset")
	err := wrapGormError("insert student", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, repository.ErrDuplicate)
	assert.Contains(t, err.Error(), "insert student")
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, isDuplicateError(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicateError(&mysql.MySQLError{Number: 1146}))
	assert.False(t, isDuplicateError(errors.New("nope")))
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "id DESC", orderBy(domain.PageRequest{SortBy: domain.SortByID, Direction: domain.SortDesc}))
	assert.Equal(t, "username ASC, id ASC", orderBy(domain.PageRequest{SortBy: domain.SortByUsername}))
	assert.Equal(t, "level DESC, id ASC", orderBy(domain.PageRequest{SortBy: domain.SortByLevel, Direction: domain.SortDesc}))
}

func TestSearchScopeSQL(t *testing.T) {
	db := dryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var out []studentModel
		return tx.Model(&studentModel{}).Scopes(searchScope("AlI")).Find(&out)
	})
	assert.Contains(t, sql, "LOCATE('ali', LOWER(username)) > 0")
	assert.Contains(t, sql, "LOCATE('AlI', CAST(id AS CHAR)) > 0")
	assert.Contains(t, sql, "`students`")
}

func TestModelTables(t *testing.T) {
	assert.Equal(t, "students", studentModel{}.TableName())
	assert.Equal(t, "admins", adminModel{}.TableName())
	assert.Equal(t,
		domain.Student{ID: 3, Username: "carol", Level: domain.LevelDoctorate},
		studentModel{ID: 3, Username: "carol", Level: "DOCTORATE"}.toDomain(),
	)
}
