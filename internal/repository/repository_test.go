package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/casting-agency/internal/model"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "mysql"), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var actorCols = []string{"id", "name", "age", "gender_id", "gender"}

func TestGenderRepo_SeedIsUpsert(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO gender (gender) VALUES (?), (?) ON DUPLICATE KEY UPDATE")).
		WithArgs("male", "female").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewGenderRepo(db).Seed(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenderRepo_GetByName(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGenderRepo(db)

	mock.ExpectQuery(q("SELECT id, gender FROM gender WHERE gender = ?")).
		WithArgs("female").
		WillReturnRows(sqlmock.NewRows([]string{"id", "gender"}).AddRow(2, "female"))
	g, err := repo.GetByName(context.Background(), "female")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), g.ID)

	mock.ExpectQuery(q("FROM gender")).
		WithArgs("other").
		WillReturnRows(sqlmock.NewRows([]string{"id", "gender"}))
	_, err = repo.GetByName(context.Background(), "other")
	assert.ErrorIs(t, err, ErrGenderNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenderRepo_List(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("SELECT id, gender FROM gender ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "gender"}).AddRow(1, "male").AddRow(2, "female"))

	rows, err := NewGenderRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "female", rows[1].Gender)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActorRepo_ListAllAttachesSortedTitles(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM actors a JOIN gender g")).
		WillReturnRows(sqlmock.NewRows(actorCols).
			AddRow(1, "Ann", 30, 2, "female").
			AddRow(2, "Bob", 41, 1, "male"))
	mock.ExpectQuery(q("FROM casting c JOIN movies m")).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "label"}).
			AddRow(1, "Zeta").
			AddRow(1, "Alpha"))

	actors, err := NewActorRepo(db).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, actors, 2)
	assert.Equal(t, []string{"Alpha", "Zeta"}, actors[0].Movies)
	assert.Equal(t, []string{}, actors[1].Movies)
	assert.Equal(t, "female", actors[0].Gender)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActorRepo_ListAllEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM actors a")).WillReturnRows(sqlmock.NewRows(actorCols))

	actors, err := NewActorRepo(db).ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, actors)
	assert.Empty(t, actors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActorRepo_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("WHERE a.id = ?")).WithArgs(9).WillReturnRows(sqlmock.NewRows(actorCols))

	_, err := NewActorRepo(db).GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrActorNotFound)
}

func TestActorRepo_CreateDuplicateName(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO actors")).
		WithArgs("Ann", 30, 2).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Ann'"})

	err := NewActorRepo(db).Create(context.Background(), &model.Actor{Name: "Ann", Age: 30, GenderID: 2})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.False(t, errors.Is(err, ErrPersistence))
}

func TestActorRepo_CreateSetsID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO actors")).WillReturnResult(sqlmock.NewResult(5, 1))

	a := &model.Actor{Name: "Ann", Age: 30, GenderID: 2}
	require.NoError(t, NewActorRepo(db).Create(context.Background(), a))
	assert.Equal(t, uint64(5), a.ID)
	assert.Equal(t, []string{}, a.Movies)
}

func TestActorRepo_DeleteRemovesCastingFirst(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM casting WHERE actor_id = ?")).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM actors WHERE id = ?")).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewActorRepo(db).Delete(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActorRepo_DeleteMissingRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM casting")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM actors")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewActorRepo(db).Delete(context.Background(), 3)
	assert.ErrorIs(t, err, ErrActorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActorRepo_ExistingIDs(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("SELECT id FROM actors WHERE id IN (?, ?)")).
		WithArgs(1, 4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	found, err := NewActorRepo(db).ExistingIDs(context.Background(), []uint64{1, 4, 1})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_CreateWithCast(t *testing.T) {
	db, mock := newMock(t)
	released := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO movies (title, release_date)")).
		WithArgs("Heat", released).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(q("INSERT INTO casting (movie_id, actor_id)")).
		WithArgs(7, 1, 7, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	m := &model.Movie{Title: "Heat", ReleaseDate: released}
	require.NoError(t, NewMovieRepo(db).Create(context.Background(), m, []uint64{1, 2, 2}))
	assert.Equal(t, uint64(7), m.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_CreateCastFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO movies")).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(q("INSERT INTO casting")).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	m := &model.Movie{Title: "Heat"}
	err := NewMovieRepo(db).Create(context.Background(), m, []uint64{1})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Zero(t, m.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_UpdateReplacesCast(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE movies SET title = ?, release_date = ? WHERE id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM casting WHERE movie_id = ?")).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	m := &model.Movie{ID: 7, Title: "Heat"}
	require.NoError(t, NewMovieRepo(db).Update(context.Background(), m, []uint64{}, true))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_UpdateKeepsCast(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE movies")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	m := &model.Movie{ID: 7, Title: "Heat"}
	require.NoError(t, NewMovieRepo(db).Update(context.Background(), m, nil, false))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_GetByIDLoadsCast(t *testing.T) {
	db, mock := newMock(t)
	released := time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q("FROM movies WHERE id = ?")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "release_date"}).AddRow(7, "Heat", released))
	mock.ExpectQuery(q("FROM casting c JOIN actors a")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "label"}).AddRow(7, "Val").AddRow(7, "Al"))

	m, err := NewMovieRepo(db).GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"Al", "Val"}, m.Actors)
	assert.Equal(t, "15/12/1995", m.FormattedReleaseDate())
}

func TestMovieRepo_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM casting WHERE movie_id = ?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM movies WHERE id = ?")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, NewMovieRepo(db).Delete(context.Background(), 99), ErrMovieNotFound)
}
