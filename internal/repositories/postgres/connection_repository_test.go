package postgres

import (
	"testing"
	"time"

	"connect-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})

	// Same settings as the real connection: TranslateError so unique-index
	// violations surface as gorm.ErrDuplicatedKey, no implicit transactions.
	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestCreateMapsUniqueViolationToDuplicatePair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	mock.ExpectQuery(`INSERT INTO "connections"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_connections_pair"})

	err := repo.Create(&models.Connection{
		UserLowID:   1,
		UserHighID:  2,
		InitiatorID: 2,
		Status:      models.ConnectionStatusPending,
	})
	assert.ErrorIs(t, err, ErrDuplicatePair)
}

func TestFindByPairQueriesCanonicalOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_low_id", "user_high_id", "initiator_id", "status"}).
		AddRow(12, 4, 9, 9, "pending")
	mock.ExpectQuery(`SELECT \* FROM "connections" WHERE \(user_low_id = \$1 AND user_high_id = \$2\)`).
		WithArgs(4, 9, 1).
		WillReturnRows(rows)

	// Arguments arrive in the reverse order; the repo flips them.
	conn, err := repo.FindByPair(9, 4)
	require.NoError(t, err)
	assert.Equal(t, uint(12), conn.ID)
	assert.Equal(t, uint(9), conn.InitiatorID)
}

func TestApplyInteractionUsesAtomicClampedUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	mock.ExpectExec(`UPDATE "connections" SET .*LEAST\(strength \+ \$2, 100\)`).
		WithArgs(sqlmock.AnyArg(), 3, sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ApplyInteraction(7, 3, time.Now())
	assert.NoError(t, err)
}

func TestApplyInteractionMissingEdge(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	mock.ExpectExec(`UPDATE "connections" SET`).
		WithArgs(sqlmock.AnyArg(), 3, sqlmock.AnyArg(), 404).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyInteraction(404, 3, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInteractionCountsSinceGroupsByType(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	rows := sqlmock.NewRows([]string{"type", "count"}).
		AddRow("message", 3).
		AddRow("endorsement", 1)
	mock.ExpectQuery(`SELECT type, COUNT\(\*\) AS count FROM "interactions"`).
		WithArgs(7, sqlmock.AnyArg()).
		WillReturnRows(rows)

	counts, err := repo.InteractionCountsSince(7, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[models.InteractionMessage])
	assert.Equal(t, int64(1), counts[models.InteractionEndorsement])
	assert.Len(t, counts, 2)
}

func TestAcceptedNeighborIDsResolvesOtherEnd(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConnectionRepository(db)

	rows := sqlmock.NewRows([]string{"user_low_id", "user_high_id"}).
		AddRow(1, 5).
		AddRow(1, 9)
	mock.ExpectQuery(`SELECT "user_low_id","user_high_id" FROM "connections"`).
		WithArgs(1, 1, "accepted").
		WillReturnRows(rows)

	ids, err := repo.AcceptedNeighborIDs(1)
	require.NoError(t, err)
	assert.Equal(t, []uint{5, 9}, ids)
}
