package repository_test

import (
	"regexp"
	"testing"

	"github.com/UnknownOlympus/hazira/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	selectState = regexp.QuoteMeta(repository.SelectStateSQL)
	upsertState = regexp.QuoteMeta(repository.UpsertStateSQL)
	createState = regexp.QuoteMeta(repository.CreateStateTableSQL)
)

const statePayload = `{"workers":[{"id":"w-1","name":"Rahim"}],"attendance":[]}`

func TestLoad(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, "crew")
		mock.ExpectQuery(selectState).
			WithArgs("crew").
			WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte(statePayload)))

		payload, err := repo.Load(ctx)

		require.NoError(t, err)
		assert.JSONEq(t, statePayload, string(payload))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("default key", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, "")
		mock.ExpectQuery(selectState).WithArgs(repository.DefaultStateKey).WillReturnError(pgx.ErrNoRows)

		_, err = repo.Load(ctx)

		require.ErrorIs(t, err, repository.ErrStateNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query failed", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, "crew")
		mock.ExpectQuery(selectState).WithArgs("crew").WillReturnError(assert.AnError)

		payload, err := repo.Load(ctx)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to load state")
		assert.Nil(t, payload)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSave(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, "crew")
		mock.ExpectExec(upsertState).
			WithArgs("crew", []byte(statePayload)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Save(ctx, []byte(statePayload)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - invalid json", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, "crew")

		err = repo.Save(ctx, []byte("{not json"))

		require.ErrorContains(t, err, "payload is not valid JSON")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec failed", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, "crew")
		mock.ExpectExec(upsertState).WithArgs("crew", []byte(statePayload)).WillReturnError(assert.AnError)

		err = repo.Save(ctx, []byte(statePayload))

		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - no rows affected", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, "crew")
		mock.ExpectExec(upsertState).
			WithArgs("crew", []byte(statePayload)).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err = repo.Save(ctx, []byte(statePayload))

		require.ErrorContains(t, err, "no rows affected")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(createState).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

		require.NoError(t, repository.NewRepository(mock, "crew").EnsureSchema(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(createState).WillReturnError(assert.AnError)

		err = repository.NewRepository(mock, "crew").EnsureSchema(ctx)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to create app_state table")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPing(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := repository.NewRepository(mock, "crew")
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(assert.AnError)

	require.NoError(t, repo.Ping(t.Context()))
	require.ErrorIs(t, repo.Ping(t.Context()), assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
