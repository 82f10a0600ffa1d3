package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"student-records/internal/domain"
	"student-records/internal/repository"
)

const createStudentsTable = `
CREATE TABLE IF NOT EXISTS students (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	level TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_students_level ON students (level);
`

type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) repository.StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStudentsTable); err != nil {
		return fmt.Errorf("create students table: %w", err)
	}
	return nil
}

func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO students (username, level)
VALUES (?, ?)`,
		student.Username,
		string(student.Level),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert student %q: %w", student.Username, repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert student: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("student last insert id: %w", err)
	}
	student.ID = id
	return id, nil
}

func (r *StudentRepository) Update(ctx context.Context, student *domain.Student) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE students
SET username = ?, level = ?
WHERE id = ?`,
		student.Username,
		string(student.Level),
		student.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update student %d: %w", student.ID, repository.ErrDuplicate)
		}
		return fmt.Errorf("update student: %w", err)
	}
	return expectAffected(res, "student", student.ID)
}

func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return expectAffected(res, "student", id)
}

func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, level
FROM students
WHERE id = ?`,
		id,
	)
	return scanStudent(row)
}

func (r *StudentRepository) GetByUsername(ctx context.Context, username string) (*domain.Student, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, level
FROM students
WHERE username = ?`,
		username,
	)
	return scanStudent(row)
}

func (r *StudentRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM students WHERE id = ?)`, id)
}

func (r *StudentRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM students WHERE username = ?)`, username)
}

func (r *StudentRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("student exists: %w", err)
	}
	return found, nil
}

func (r *StudentRepository) List(ctx context.Context, req domain.PageRequest) (domain.Page[domain.Student], error) {
	return r.page(ctx, "", nil, req)
}

func (r *StudentRepository) ListByLevel(ctx context.Context, level domain.Level, req domain.PageRequest) (domain.Page[domain.Student], error) {
	return r.page(ctx, "WHERE level = ?", []any{string(level)}, req)
}

// Search matches a case-insensitive username substring or a substring of the
// id rendered as decimal text. instr keeps the query literal, so % and _ are
// not wildcards.
func (r *StudentRepository) Search(ctx context.Context, query string, req domain.PageRequest) (domain.Page[domain.Student], error) {
	where := "WHERE instr(" + foldFunc + "(username), ?) > 0 OR instr(CAST(id AS TEXT), ?) > 0"
	return r.page(ctx, where, []any{strings.ToLower(query), query}, req)
}

func (r *StudentRepository) page(ctx context.Context, where string, args []any, req domain.PageRequest) (domain.Page[domain.Student], error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students `+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.Student]{}, fmt.Errorf("count students: %w", err)
	}

	query := fmt.Sprintf(`
SELECT id, username, level
FROM students
%s
ORDER BY %s
LIMIT ? OFFSET ?`, where, orderBy(req))

	rows, err := r.db.QueryContext(ctx, query, append(args, req.Size, req.Offset())...)
	if err != nil {
		return domain.Page[domain.Student]{}, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := make([]domain.Student, 0, req.Size)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return domain.Page[domain.Student]{}, err
		}
		students = append(students, *student)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Student]{}, fmt.Errorf("iterate students: %w", err)
	}

	return domain.NewPage(students, total, req), nil
}

func scanStudent(row interface {
	Scan(dest ...any) error
}) (*domain.Student, error) {
	var (
		student domain.Student
		level   string
	)
	if err := row.Scan(&student.ID, &student.Username, &level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan student: %w", err)
	}
	student.Level = domain.Level(level)
	return &student, nil
}

func expectAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, repository.ErrNotFound)
	}
	return nil
}
