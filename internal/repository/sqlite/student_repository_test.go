package sqlite

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-records/internal/domain"
	"student-records/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newStudentRepo(t *testing.T) repository.StudentRepository {
	t.Helper()
	repo := NewStudentRepository(openTestDB(t))
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func seedStudents(t *testing.T, repo repository.StudentRepository, students ...domain.Student) []domain.Student {
	t.Helper()
	out := make([]domain.Student, 0, len(students))
	for i := range students {
		s := students[i]
		_, err := repo.Create(context.Background(), &s)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func pageReq(page, size int, key domain.SortKey, dir domain.SortDirection) domain.PageRequest {
	return domain.PageRequest{Page: page, Size: size, SortBy: key, Direction: dir}
}

func usernames(students []domain.Student) []string {
	names := make([]string, len(students))
	for i := range students {
		names[i] = students[i].Username
	}
	return names
}

func TestStudentRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)

	student := &domain.Student{Username: "alice", Level: domain.LevelMaster}
	id, err := repo.Create(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, id, student.ID)
	assert.Positive(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.Student{ID: id, Username: "alice", Level: domain.LevelMaster}, *got)

	got, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = repo.GetByUsername(ctx, "ALICE")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByID(ctx, id+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStudentRepository_UniqueUsername(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)
	seeded := seedStudents(t, repo,
		domain.Student{Username: "alice", Level: domain.LevelBachelor},
		domain.Student{Username: "bob", Level: domain.LevelMaster},
	)

	_, err := repo.Create(ctx, &domain.Student{Username: "alice", Level: domain.LevelDoctorate})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = repo.Update(ctx, &domain.Student{ID: seeded[1].ID, Username: "alice", Level: domain.LevelMaster})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	bob, err := repo.GetByID(ctx, seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", bob.Username)

	page, err := repo.List(ctx, pageReq(0, 10, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestStudentRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)
	seeded := seedStudents(t, repo, domain.Student{Username: "alice", Level: domain.LevelBachelor})
	id := seeded[0].ID

	require.NoError(t, repo.Update(ctx, &domain.Student{ID: id, Username: "alice", Level: domain.LevelEngineer}))
	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelEngineer, got.Level)

	err = repo.Update(ctx, &domain.Student{ID: id + 1, Username: "ghost", Level: domain.LevelMaster})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	exists, err := repo.ExistsByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), repository.ErrNotFound)

	exists, err = repo.ExistsByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStudentRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)
	seedStudents(t, repo,
		domain.Student{Username: "carol", Level: domain.LevelMaster},
		domain.Student{Username: "alice", Level: domain.LevelMaster},
		domain.Student{Username: "bob", Level: domain.LevelBachelor},
		domain.Student{Username: "dave", Level: domain.LevelMaster},
	)

	page, err := repo.List(ctx, pageReq(0, 10, domain.SortByUsername, domain.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol", "dave"}, usernames(page.Items))

	page, err = repo.List(ctx, pageReq(0, 10, domain.SortByID, domain.SortDesc))
	require.NoError(t, err)
	assert.Equal(t, []string{"dave", "bob", "alice", "carol"}, usernames(page.Items))

	// equal levels keep id order regardless of direction
	page, err = repo.List(ctx, pageReq(0, 10, domain.SortByLevel, domain.SortDesc))
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "alice", "dave", "bob"}, usernames(page.Items))
}

func TestStudentRepository_ListPaging(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)

	empty, err := repo.List(ctx, pageReq(0, 10, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, int64(0), empty.Total)

	seedStudents(t, repo,
		domain.Student{Username: "s1", Level: domain.LevelBachelor},
		domain.Student{Username: "s2", Level: domain.LevelBachelor},
		domain.Student{Username: "s3", Level: domain.LevelBachelor},
		domain.Student{Username: "s4", Level: domain.LevelBachelor},
		domain.Student{Username: "s5", Level: domain.LevelBachelor},
	)

	for _, tc := range []struct {
		page, size int
		want       []string
	}{
		{0, 2, []string{"s1", "s2"}},
		{1, 2, []string{"s3", "s4"}},
		{2, 2, []string{"s5"}},
		{3, 2, []string{}},
		{0, 10, []string{"s1", "s2", "s3", "s4", "s5"}},
	} {
		page, err := repo.List(ctx, pageReq(tc.page, tc.size, domain.SortByID, domain.SortAsc))
		require.NoError(t, err)
		assert.Equal(t, tc.want, usernames(page.Items), "page %d size %d", tc.page, tc.size)
		assert.LessOrEqual(t, len(page.Items), tc.size)
		assert.Equal(t, int64(5), page.Total)
	}
}

func TestStudentRepository_ListByLevel(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)
	seedStudents(t, repo,
		domain.Student{Username: "alice", Level: domain.LevelMaster},
		domain.Student{Username: "bob", Level: domain.LevelBachelor},
		domain.Student{Username: "carol", Level: domain.LevelMaster},
	)

	page, err := repo.ListByLevel(ctx, domain.LevelMaster, pageReq(0, 1, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(page.Items))
	assert.Equal(t, int64(2), page.Total)

	page, err = repo.ListByLevel(ctx, domain.LevelDoctorate, pageReq(0, 10, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(0), page.Total)
}

func TestStudentRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)

	// ids 1..12; only 1 and 12 survive
	for i := 1; i <= 12; i++ {
		seedStudents(t, repo, domain.Student{Username: "filler" + string(rune('a'+i)), Level: domain.LevelBachelor})
	}
	for i := 2; i <= 11; i++ {
		require.NoError(t, repo.Delete(ctx, int64(i)))
	}
	require.NoError(t, repo.Update(ctx, &domain.Student{ID: 1, Username: "alice", Level: domain.LevelBachelor}))
	require.NoError(t, repo.Update(ctx, &domain.Student{ID: 12, Username: "Bob", Level: domain.LevelMaster}))

	page, err := repo.Search(ctx, "1", pageReq(0, 10, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "Bob"}, usernames(page.Items))
	assert.Equal(t, int64(2), page.Total)

	page, err = repo.Search(ctx, "bO", pageReq(0, 10, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, usernames(page.Items))

	page, err = repo.Search(ctx, "2", pageReq(0, 10, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, usernames(page.Items))

	page, err = repo.Search(ctx, "%", pageReq(0, 10, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = repo.Search(ctx, "", pageReq(0, 10, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestStudentRepository_SearchFoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)
	seedStudents(t, repo,
		domain.Student{Username: "Élodie", Level: domain.LevelMaster},
		domain.Student{Username: "ÖZGÜR", Level: domain.LevelBachelor},
		domain.Student{Username: "eloise", Level: domain.LevelMaster},
	)

	for _, query := range []string{"élo", "ÉLO", "Élodie"} {
		page, err := repo.Search(ctx, query, pageReq(0, 10, domain.SortByID, domain.SortAsc))
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total, query)
		assert.Equal(t, []string{"Élodie"}, usernames(page.Items), query)
	}

	page, err := repo.Search(ctx, "güR", pageReq(0, 10, domain.SortByID, domain.SortAsc))
	require.NoError(t, err)
	assert.Equal(t, []string{"ÖZGÜR"}, usernames(page.Items))
}

func TestStudentRepository_ListPastEndIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := newStudentRepo(t)
	seedStudents(t, repo, domain.Student{Username: "alice", Level: domain.LevelMaster})

	req := pageReq(math.MaxInt/domain.MaxPageSize, domain.MaxPageSize, domain.SortByID, domain.SortAsc)
	require.NoError(t, req.Validate())

	page, err := repo.List(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(1), page.Total)
}
