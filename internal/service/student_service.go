package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"student-records/internal/domain"
	"student-records/internal/repository"
)

// StudentService enforces the student record invariants around the store.
type StudentService interface {
	List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Student], error)
	Get(ctx context.Context, id int64) (*domain.Student, error)
	Create(ctx context.Context, username string, level domain.Level) (*domain.Student, error)
	Update(ctx context.Context, id int64, username string, level domain.Level) (*domain.Student, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string, req domain.PageRequest) (domain.Page[domain.Student], error)
	ListByLevel(ctx context.Context, level domain.Level, req domain.PageRequest) (domain.Page[domain.Student], error)
}

type studentService struct {
	students repository.StudentRepository
	log      logrus.FieldLogger
}

func NewStudentService(students repository.StudentRepository, log logrus.FieldLogger) StudentService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &studentService{
		students: students,
		log:      log.WithField("component", "students"),
	}
}

func (s *studentService) List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Student], error) {
	if err := validatePage(&req); err != nil {
		return domain.Page[domain.Student]{}, err
	}
	return s.students.List(ctx, req)
}

func (s *studentService) Get(ctx context.Context, id int64) (*domain.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, studentNotFound(id)
		}
		return nil, err
	}
	return student, nil
}

func (s *studentService) Create(ctx context.Context, username string, level domain.Level) (*domain.Student, error) {
	username = strings.TrimSpace(username)
	if err := validateStudent(username, level); err != nil {
		return nil, err
	}

	taken, err := s.students.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, usernameTaken(username)
	}

	student := &domain.Student{Username: username, Level: level}
	if _, err := s.students.Create(ctx, student); err != nil {
		// lost a race with a concurrent insert of the same username
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, usernameTaken(username)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"id": student.ID, "username": student.Username}).Info("student created")
	return student, nil
}

func (s *studentService) Update(ctx context.Context, id int64, username string, level domain.Level) (*domain.Student, error) {
	username = strings.TrimSpace(username)
	if err := validateStudent(username, level); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	owner, err := s.students.GetByUsername(ctx, username)
	switch {
	case err == nil && owner.ID != id:
		return nil, usernameTaken(username)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	student := &domain.Student{ID: id, Username: username, Level: level}
	if err := s.students.Update(ctx, student); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, usernameTaken(username)
		case errors.Is(err, repository.ErrNotFound):
			return nil, studentNotFound(id)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"id": id, "username": username}).Info("student updated")
	return student, nil
}

func (s *studentService) Delete(ctx context.Context, id int64) error {
	exists, err := s.students.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return studentNotFound(id)
	}

	if err := s.students.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return studentNotFound(id)
		}
		return err
	}

	s.log.WithField("id", id).Info("student deleted")
	return nil
}

func (s *studentService) Search(ctx context.Context, query string, req domain.PageRequest) (domain.Page[domain.Student], error) {
	if err := validatePage(&req); err != nil {
		return domain.Page[domain.Student]{}, err
	}
	return s.students.Search(ctx, query, req)
}

func (s *studentService) ListByLevel(ctx context.Context, level domain.Level, req domain.PageRequest) (domain.Page[domain.Student], error) {
	if !level.Valid() {
		return domain.Page[domain.Student]{}, NewValidationError(map[string]string{"level": "Invalid level: " + string(level)})
	}
	if err := validatePage(&req); err != nil {
		return domain.Page[domain.Student]{}, err
	}
	return s.students.ListByLevel(ctx, level, req)
}

func validateStudent(username string, level domain.Level) error {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "Username is required"
	}
	if level == "" {
		fields["level"] = "Level is required"
	} else if !level.Valid() {
		fields["level"] = "Invalid level: " + string(level)
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

func validatePage(req *domain.PageRequest) error {
	if err := req.Validate(); err != nil {
		return NewValidationError(map[string]string{"page": err.Error()})
	}
	return nil
}

func studentNotFound(id int64) error {
	return NewNotFoundError("Student not found with id: %d", id)
}

func usernameTaken(username string) error {
	return NewConflictError("Student with username '%s' already exists", username)
}
