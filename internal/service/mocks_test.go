package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"student-records/internal/auth"
	"student-records/internal/domain"
	"student-records/internal/storage"
)

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStudentRepository) Create(ctx context.Context, student *domain.Student) (int64, error) {
	args := m.Called(ctx, student)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepository) Update(ctx context.Context, student *domain.Student) error {
	return m.Called(ctx, student).Error(0)
}

func (m *MockStudentRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	args := m.Called(ctx, id)
	student, _ := args.Get(0).(*domain.Student)
	return student, args.Error(1)
}

func (m *MockStudentRepository) GetByUsername(ctx context.Context, username string) (*domain.Student, error) {
	args := m.Called(ctx, username)
	student, _ := args.Get(0).(*domain.Student)
	return student, args.Error(1)
}

func (m *MockStudentRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStudentRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockStudentRepository) List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Student], error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Page[domain.Student]), args.Error(1)
}

func (m *MockStudentRepository) ListByLevel(ctx context.Context, level domain.Level, req domain.PageRequest) (domain.Page[domain.Student], error) {
	args := m.Called(ctx, level, req)
	return args.Get(0).(domain.Page[domain.Student]), args.Error(1)
}

func (m *MockStudentRepository) Search(ctx context.Context, query string, req domain.PageRequest) (domain.Page[domain.Student], error) {
	args := m.Called(ctx, query, req)
	return args.Get(0).(domain.Page[domain.Student]), args.Error(1)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *domain.Admin) (int64, error) {
	args := m.Called(ctx, admin)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	args := m.Called(ctx, username)
	admin, _ := args.Get(0).(*domain.Admin)
	return admin, args.Error(1)
}

func (m *MockAdminRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Generate(username string) (string, error) {
	args := m.Called(username)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) Parse(token string) (*auth.Claims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

func (m *MockTokenIssuer) Validate(token, username string) (*auth.Claims, error) {
	args := m.Called(token, username)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

type MockStorage struct {
	mock.Mock
	uploaded string
}

func (m *MockStorage) Upload(ctx context.Context, body io.Reader, opts storage.UploadOptions) (string, error) {
	data, _ := io.ReadAll(body)
	m.uploaded = string(data)
	args := m.Called(ctx, opts)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, prefix)
	objects, _ := args.Get(0).([]storage.ObjectInfo)
	return objects, args.Error(1)
}
