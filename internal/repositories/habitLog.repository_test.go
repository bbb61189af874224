package repositories

import (
	"context"
	"regexp"
	"testing"

	"cronify/internal/models"
	"cronify/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upsertConflict = `ON CONFLICT ("habit_id","date") DO UPDATE SET ` +
	`"status"="excluded"."status","value"="excluded"."value","reason"="excluded"."reason",` +
	`"notes"="excluded"."notes","mood"="excluded"."mood","updated_at"="excluded"."updated_at"`

func TestHabitLogRepository_Upsert(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewHabitLogRepository(nil)

	habitID := uuid.New()
	logID := uuid.New()

	mock.ExpectExec(`INSERT INTO "habit_logs" .*` + regexp.QuoteMeta(upsertConflict)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "habit_logs" WHERE .*habit_id = \$1 AND date = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "habit_id", "date", "status", "notes"}).
			AddRow(logID.String(), habitID.String(), "2024-03-15", "completed", "second try"))

	stored, err := repo.Upsert(context.Background(), db, &models.HabitLog{
		HabitID: habitID,
		Date:    "2024-03-15",
		Status:  models.LogStatusCompleted,
		Notes:   "second try",
	})

	require.NoError(t, err)
	assert.Equal(t, logID, stored.ID)
	assert.Equal(t, models.LogStatusCompleted, stored.Status)
	assert.Equal(t, "second try", stored.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitLogRepository_CreateIfMissing(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantCreated  bool
	}{
		{name: "empty day gets the log", rowsAffected: 1, wantCreated: true},
		{name: "existing log is kept", rowsAffected: 0, wantCreated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			repo := NewHabitLogRepository(nil)

			mock.ExpectExec(`INSERT INTO "habit_logs" .*` +
				regexp.QuoteMeta(`ON CONFLICT ("habit_id","date") DO NOTHING`)).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			created, err := repo.CreateIfMissing(context.Background(), db, &models.HabitLog{
				HabitID: uuid.New(),
				Date:    "2024-03-14",
				Status:  models.LogStatusFailed,
				Reason:  models.AutoFailReason,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHabitLogRepository_Delete(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{name: "removes the day", rowsAffected: 1},
		{name: "missing day is not found", rowsAffected: 0, wantErr: types.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			repo := NewHabitLogRepository(nil)
			habitID := uuid.New()

			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "habit_logs" WHERE habit_id = $1 AND date = $2`)).
				WithArgs(habitID, "2024-03-15").
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.Delete(context.Background(), db, habitID, "2024-03-15")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHabitLogRepository_ListByHabit_Range(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewHabitLogRepository(nil)
	habitID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "habit_logs" WHERE habit_id = \$1 AND date >= \$2 AND date <= \$3 .*ORDER BY date ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "habit_id", "date", "status"}).
			AddRow(uuid.NewString(), habitID.String(), "2024-03-01", "completed").
			AddRow(uuid.NewString(), habitID.String(), "2024-03-02", "skipped"))

	logs, err := repo.ListByHabit(context.Background(), db, habitID, types.DateRange{From: "2024-03-01", To: "2024-03-31"})

	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2024-03-01", logs[0].Date)
	assert.Equal(t, models.LogStatusSkipped, logs[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
