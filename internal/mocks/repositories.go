// Package mocks holds testify mocks for the repository and service
// interfaces used by controllers and jobs.
package mocks

import (
	"context"
	"time"

	"cronify/internal/models"
	"cronify/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func errOrNil(args mock.Arguments, index int) error {
	return args.Error(index)
}

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return errOrNil(m.Called(ctx, tx, user), 0)
}

func (m *UserRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	args := m.Called(ctx, tx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return errOrNil(m.Called(ctx, tx, user), 0)
}

func (m *UserRepository) UpdateLastLogin(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) error {
	return errOrNil(m.Called(ctx, tx, userID, at), 0)
}

func (m *UserRepository) ClearUserCache(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

type UserSettingsRepository struct{ mock.Mock }

func (m *UserSettingsRepository) GetOrCreate(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) (*models.UserSettings, error) {
	args := m.Called(ctx, tx, userID)
	settings, _ := args.Get(0).(*models.UserSettings)
	return settings, args.Error(1)
}

func (m *UserSettingsRepository) Update(ctx context.Context, tx *gorm.DB, settings *models.UserSettings) error {
	return errOrNil(m.Called(ctx, tx, settings), 0)
}

func (m *UserSettingsRepository) ListAutoFailEnabled(ctx context.Context, tx *gorm.DB) ([]models.UserSettings, error) {
	args := m.Called(ctx, tx)
	settings, _ := args.Get(0).([]models.UserSettings)
	return settings, args.Error(1)
}

type HabitRepository struct{ mock.Mock }

func (m *HabitRepository) Create(ctx context.Context, tx *gorm.DB, habit *models.Habit) error {
	return errOrNil(m.Called(ctx, tx, habit), 0)
}

func (m *HabitRepository) GetByID(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) (*models.Habit, error) {
	args := m.Called(ctx, tx, habitID)
	habit, _ := args.Get(0).(*models.Habit)
	return habit, args.Error(1)
}

func (m *HabitRepository) GetUserHabit(
	ctx context.Context,
	tx *gorm.DB,
	userID, habitID uuid.UUID,
) (*models.Habit, error) {
	args := m.Called(ctx, tx, userID, habitID)
	habit, _ := args.Get(0).(*models.Habit)
	return habit, args.Error(1)
}

func (m *HabitRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]models.Habit, error) {
	args := m.Called(ctx, tx, userID)
	habits, _ := args.Get(0).([]models.Habit)
	return habits, args.Error(1)
}

func (m *HabitRepository) ListShared(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]models.Habit, error) {
	args := m.Called(ctx, tx, ownerID)
	habits, _ := args.Get(0).([]models.Habit)
	return habits, args.Error(1)
}

func (m *HabitRepository) ListBuildHabitsForUsers(
	ctx context.Context,
	tx *gorm.DB,
	userIDs []uuid.UUID,
) ([]models.Habit, error) {
	args := m.Called(ctx, tx, userIDs)
	habits, _ := args.Get(0).([]models.Habit)
	return habits, args.Error(1)
}

func (m *HabitRepository) Update(ctx context.Context, tx *gorm.DB, habit *models.Habit) error {
	return errOrNil(m.Called(ctx, tx, habit), 0)
}

func (m *HabitRepository) UpdateTimer(
	ctx context.Context,
	tx *gorm.DB,
	habit *models.Habit,
	lastResetAt time.Time,
	maxStreakSeconds int64,
) error {
	return errOrNil(m.Called(ctx, tx, habit, lastResetAt, maxStreakSeconds), 0)
}

func (m *HabitRepository) Delete(ctx context.Context, tx *gorm.DB, userID, habitID uuid.UUID) error {
	return errOrNil(m.Called(ctx, tx, userID, habitID), 0)
}

func (m *HabitRepository) ClearUserHabitsCache(ctx context.Context, userID uuid.UUID) {
	m.Called(ctx, userID)
}

type HabitLogRepository struct{ mock.Mock }

func (m *HabitLogRepository) Upsert(ctx context.Context, tx *gorm.DB, log *models.HabitLog) (*models.HabitLog, error) {
	args := m.Called(ctx, tx, log)
	saved, _ := args.Get(0).(*models.HabitLog)
	return saved, args.Error(1)
}

func (m *HabitLogRepository) CreateIfMissing(ctx context.Context, tx *gorm.DB, log *models.HabitLog) (bool, error) {
	args := m.Called(ctx, tx, log)
	return args.Bool(0), args.Error(1)
}

func (m *HabitLogRepository) ListByHabit(
	ctx context.Context,
	tx *gorm.DB,
	habitID uuid.UUID,
	dates types.DateRange,
) ([]models.HabitLog, error) {
	args := m.Called(ctx, tx, habitID, dates)
	logs, _ := args.Get(0).([]models.HabitLog)
	return logs, args.Error(1)
}

func (m *HabitLogRepository) GetByDate(
	ctx context.Context,
	tx *gorm.DB,
	habitID uuid.UUID,
	date string,
) (*models.HabitLog, error) {
	args := m.Called(ctx, tx, habitID, date)
	log, _ := args.Get(0).(*models.HabitLog)
	return log, args.Error(1)
}

func (m *HabitLogRepository) Delete(ctx context.Context, tx *gorm.DB, habitID uuid.UUID, date string) error {
	return errOrNil(m.Called(ctx, tx, habitID, date), 0)
}

func (m *HabitLogRepository) LoggedHabitIDs(
	ctx context.Context,
	tx *gorm.DB,
	habitIDs []uuid.UUID,
	date string,
) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, tx, habitIDs, date)
	logged, _ := args.Get(0).(map[uuid.UUID]bool)
	return logged, args.Error(1)
}

type PartnershipRepository struct{ mock.Mock }

func (m *PartnershipRepository) Create(ctx context.Context, tx *gorm.DB, partnership *models.Partnership) error {
	return errOrNil(m.Called(ctx, tx, partnership), 0)
}

func (m *PartnershipRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Partnership, error) {
	args := m.Called(ctx, tx, id)
	partnership, _ := args.Get(0).(*models.Partnership)
	return partnership, args.Error(1)
}

func (m *PartnershipRepository) ListByOwner(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
) ([]models.Partnership, error) {
	args := m.Called(ctx, tx, ownerID)
	partnerships, _ := args.Get(0).([]models.Partnership)
	return partnerships, args.Error(1)
}

func (m *PartnershipRepository) ListByPartnerEmail(
	ctx context.Context,
	tx *gorm.DB,
	email string,
) ([]models.Partnership, error) {
	args := m.Called(ctx, tx, email)
	partnerships, _ := args.Get(0).([]models.Partnership)
	return partnerships, args.Error(1)
}

func (m *PartnershipRepository) FindOpen(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
	email string,
) (*models.Partnership, error) {
	args := m.Called(ctx, tx, ownerID, email)
	partnership, _ := args.Get(0).(*models.Partnership)
	return partnership, args.Error(1)
}

func (m *PartnershipRepository) FindActive(
	ctx context.Context,
	tx *gorm.DB,
	ownerID uuid.UUID,
	email string,
) (*models.Partnership, error) {
	args := m.Called(ctx, tx, ownerID, email)
	partnership, _ := args.Get(0).(*models.Partnership)
	return partnership, args.Error(1)
}

func (m *PartnershipRepository) Update(ctx context.Context, tx *gorm.DB, partnership *models.Partnership) error {
	return errOrNil(m.Called(ctx, tx, partnership), 0)
}

type EncouragementRepository struct{ mock.Mock }

func (m *EncouragementRepository) Create(ctx context.Context, tx *gorm.DB, encouragement *models.Encouragement) error {
	return errOrNil(m.Called(ctx, tx, encouragement), 0)
}

func (m *EncouragementRepository) ListByHabit(
	ctx context.Context,
	tx *gorm.DB,
	habitID uuid.UUID,
) ([]models.Encouragement, error) {
	args := m.Called(ctx, tx, habitID)
	encouragements, _ := args.Get(0).([]models.Encouragement)
	return encouragements, args.Error(1)
}

type RelapseRepository struct{ mock.Mock }

func (m *RelapseRepository) Create(ctx context.Context, tx *gorm.DB, relapse *models.Relapse) error {
	return errOrNil(m.Called(ctx, tx, relapse), 0)
}

func (m *RelapseRepository) ListByHabit(ctx context.Context, tx *gorm.DB, habitID uuid.UUID) ([]models.Relapse, error) {
	args := m.Called(ctx, tx, habitID)
	relapses, _ := args.Get(0).([]models.Relapse)
	return relapses, args.Error(1)
}
