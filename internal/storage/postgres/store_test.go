package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"internship_fetcher/internal/domain"
	"internship_fetcher/testdata/utils"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func samplePosting() *domain.Posting {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Posting{
		ID:          5,
		WebsiteID:   1,
		ExternalID:  utils.Ptr("42"),
		URL:         "https://hh.ru/vacancy/42",
		Title:       "Стажер",
		Company:     "Acme",
		Position:    "Стажер",
		Description: "Описание",
		ContentHash: "abc",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPostingStore_GetByExternalID(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)

	mock.ExpectQuery("SELECT .+ FROM postings WHERE website_id = \\$1 AND external_id = \\$2").
		WithArgs(int64(1), "42").
		WillReturnRows(sqlmock.NewRows([]string{"id", "website_id", "external_id", "url", "title", "content_hash"}).
			AddRow(5, 1, "42", "https://hh.ru/vacancy/42", "Стажер", "abc"))

	p, err := store.GetByExternalID(context.Background(), 1, "42")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, "42", *p.ExternalID)
	assert.Equal(t, "Стажер", p.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingStore_GetByContentHash_Miss(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)

	mock.ExpectQuery("SELECT .+ FROM postings WHERE website_id = \\$1 AND content_hash = \\$2").
		WithArgs(int64(1), "abc").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	p, err := store.GetByContentHash(context.Background(), 1, "abc")
	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingStore_GetByURL(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)

	mock.ExpectQuery("SELECT .+ FROM postings WHERE website_id = \\$1 AND url = \\$2 ORDER BY external_id NULLS FIRST, id LIMIT 1").
		WithArgs(int64(1), "https://jobs.acme.io/backend-intern").
		WillReturnRows(sqlmock.NewRows([]string{"id", "website_id", "url"}).AddRow(5, 1, "https://jobs.acme.io/backend-intern"))

	p, err := store.GetByURL(context.Background(), 1, "https://jobs.acme.io/backend-intern")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, int64(5), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingStore_GetByExternalID_Error(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)

	mock.ExpectQuery("SELECT .+ FROM postings").WillReturnError(errors.New("connection reset"))

	p, err := store.GetByExternalID(context.Background(), 1, "42")
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestPostingStore_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)
	p := samplePosting()
	p.ID = 0

	mock.ExpectQuery("INSERT INTO postings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	require.NoError(t, store.Insert(context.Background(), p))
	assert.Equal(t, int64(11), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingStore_Insert_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)

	mock.ExpectQuery("INSERT INTO postings").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "postings_website_content_hash_key"})

	err := store.Insert(context.Background(), samplePosting())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Contains(t, err.Error(), "postings_website_content_hash_key")
}

func TestPostingStore_Insert_OtherPQErrorPassesThrough(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)

	mock.ExpectQuery("INSERT INTO postings").
		WillReturnError(&pq.Error{Code: "23514", Constraint: "postings_employment_type_check"})

	err := store.Insert(context.Background(), samplePosting())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
}

func TestPostingStore_Update(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)

	mock.ExpectExec("UPDATE postings SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, store.Update(context.Background(), samplePosting()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingStore_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)

	mock.ExpectExec("UPDATE postings SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Update(context.Background(), samplePosting())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostingStore_DeleteOrphans(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)

	mock.ExpectExec("DELETE FROM postings WHERE website_id = \\$1 AND content_hash = \\$2 AND external_id IS DISTINCT FROM \\$3").
		WithArgs(int64(1), "abc", "42").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := store.DeleteOrphans(context.Background(), 1, "abc", utils.Ptr("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingStore_ArchiveExpired(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewPostingStore(db)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE postings SET is_archived = TRUE").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.ArchiveExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebsiteStore_GetOrCreate(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewWebsiteStore(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO websites .+ ON CONFLICT \\(name\\)").
		WithArgs("jobs.acme.io", "https://jobs.acme.io", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "is_special", "created_at", "updated_at"}).
			AddRow(4, "jobs.acme.io", "https://jobs.acme.io", false, now, now))

	w, err := store.GetOrCreate(context.Background(), domain.Website{Name: "jobs.acme.io", URL: "https://jobs.acme.io"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), w.ID)
	assert.False(t, w.IsSpecial)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebsiteStore_GetByName_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewWebsiteStore(db)

	mock.ExpectQuery("SELECT .+ FROM websites WHERE name = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetByName(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWebsiteStore_Delete(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "operator website",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT is_special FROM websites").
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows([]string{"is_special"}).AddRow(false))
				mock.ExpectExec("DELETE FROM websites").
					WithArgs(int64(7)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "special website",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT is_special FROM websites").
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows([]string{"is_special"}).AddRow(true))
			},
			wantErr: domain.ErrProtectedSource,
		},
		{
			name: "unknown website",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT is_special FROM websites").
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows([]string{"is_special"}))
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setup(mock)

			err := NewWebsiteStore(db).Delete(context.Background(), 7)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSearchQueryStore_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSearchQueryStore(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO search_queries .+ ON CONFLICT \\(city, keywords\\)").
		WithArgs("Москва", "go", 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, now))

	q := &domain.SearchQuery{City: "Москва", Keywords: "go", MaxPages: 3}
	require.NoError(t, store.Upsert(context.Background(), q))
	assert.Equal(t, int64(9), q.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchQueryStore_ListAndMarkExecuted(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSearchQueryStore(db)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM search_queries").
		WillReturnRows(sqlmock.NewRows([]string{"id", "city", "keywords", "max_pages", "last_executed", "created_at"}).
			AddRow(1, "Москва", "go", 5, nil, now).
			AddRow(2, "", "python", 1, now, now))
	mock.ExpectExec("UPDATE search_queries SET last_executed").
		WithArgs(int64(1), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	queries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Nil(t, queries[0].LastExecuted)
	assert.NotNil(t, queries[1].LastExecuted)

	require.NoError(t, store.MarkExecuted(context.Background(), 1, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db)
	store := NewPostingStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM postings").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		assert.NotNil(t, GetTxFromContext(ctx))
		_, err := store.DeleteOrphans(ctx, 1, "abc", nil)
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_NestedJoinsOuter(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		outer := GetTxFromContext(ctx)
		return tm.WithTransaction(ctx, func(inner context.Context) error {
			assert.Same(t, outer, GetTxFromContext(inner))
			return nil
		})
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_CommitUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "23505"})

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrDuplicate)
}
