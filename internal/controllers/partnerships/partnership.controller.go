package partnershipController

import (
	"context"
	"errors"
	"time"

	"cronify/internal/database"
	"cronify/internal/events"
	"cronify/internal/logger"
	. "cronify/internal/models"
	"cronify/internal/repositories"
	"cronify/internal/services"
	"cronify/internal/types"
	"cronify/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sharedLogDays is how many recent days of logs a partner sees per habit.
const sharedLogDays = 30

type InviteRequest struct {
	Email       string      `json:"email"`
	Role        PartnerRole `json:"role"`
	ShowStreaks *bool       `json:"showStreaks"`
	ShowLogs    *bool       `json:"showLogs"`
	ShowNotes   *bool       `json:"showNotes"`
}

type RespondRequest struct {
	Accept bool `json:"accept"`
}

type StatusRequest struct {
	Status PartnershipStatus `json:"status"`
}

type SettingsRequest struct {
	Role        *PartnerRole `json:"role"`
	ShowStreaks *bool        `json:"showStreaks"`
	ShowLogs    *bool        `json:"showLogs"`
	ShowNotes   *bool        `json:"showNotes"`
}

// SharedHabit is what a partner sees of an owner's habit. Stats, timer and
// logs are present only when the partnership allows them.
type SharedHabit struct {
	PartnershipID uuid.UUID            `json:"partnershipId"`
	OwnerName     string               `json:"ownerName"`
	Role          PartnerRole          `json:"role"`
	HabitID       uuid.UUID            `json:"habitId"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Type          HabitType            `json:"type"`
	Frequency     HabitFrequency       `json:"frequency"`
	StartDate     string               `json:"startDate"`
	Stats         *utils.HabitStats    `json:"stats,omitempty"`
	Timer         *utils.TimerSnapshot `json:"timer,omitempty"`
	Logs          []HabitLog           `json:"logs,omitempty"`
}

type PartnershipController struct {
	partnershipRepo repositories.PartnershipRepository
	userRepo        repositories.UserRepository
	habitRepo       repositories.HabitRepository
	logRepo         repositories.HabitLogRepository
	settingsRepo    repositories.UserSettingsRepository
	mailer          services.Mailer
	publisher       events.Publisher
	db              *gorm.DB
	now             func() time.Time
	log             logger.Logger
}

type PartnershipControllerInterface interface {
	Invite(ctx context.Context, owner *User, req InviteRequest) (*Partnership, error)
	ListOwned(ctx context.Context, owner *User) ([]Partnership, error)
	ListInvitations(ctx context.Context, user *User) ([]Partnership, error)
	Respond(ctx context.Context, user *User, partnershipID uuid.UUID, req RespondRequest) (*Partnership, error)
	UpdateStatus(ctx context.Context, user *User, partnershipID uuid.UUID, req StatusRequest) (*Partnership, error)
	UpdateSettings(ctx context.Context, owner *User, partnershipID uuid.UUID, req SettingsRequest) (*Partnership, error)
	ListSharedHabits(ctx context.Context, user *User) ([]SharedHabit, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	publisher events.Publisher,
	db database.DB,
) PartnershipControllerInterface {
	return &PartnershipController{
		partnershipRepo: repos.Partnership,
		userRepo:        repos.User,
		habitRepo:       repos.Habit,
		logRepo:         repos.HabitLog,
		settingsRepo:    repos.UserSettings,
		mailer:          services.Mailer,
		publisher:       publisher,
		db:              db.SQL,
		now:             time.Now,
		log:             logger.New("partnershipController"),
	}
}

func (pc *PartnershipController) Invite(
	ctx context.Context,
	owner *User,
	req InviteRequest,
) (*Partnership, error) {
	log := pc.log.TraceFromContext(ctx).Function("Invite")

	email, err := utils.ParseEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if email == NormalizeEmail(owner.Email) {
		return nil, log.ErrorWithType(types.ErrValidation, "cannot invite yourself")
	}

	role := req.Role
	if role == "" {
		role = PartnerRoleSupporter
	}
	if !role.Valid() {
		return nil, log.ErrorWithType(types.ErrValidation, "role must be supporter or viewer", "role", role)
	}

	existing, err := pc.partnershipRepo.FindOpen(ctx, pc.db, owner.ID, email)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, log.ErrorWithType(types.ErrConflict, "partnership already exists", "partnershipID", existing.ID)
	}

	partnership := &Partnership{
		OwnerID:      owner.ID,
		PartnerEmail: email,
		Status:       PartnershipPending,
		Role:         role,
		ShowStreaks:  boolOr(req.ShowStreaks, true),
		ShowLogs:     boolOr(req.ShowLogs, true),
		ShowNotes:    boolOr(req.ShowNotes, false),
	}
	if err := pc.partnershipRepo.Create(ctx, pc.db, partnership); err != nil {
		return nil, err
	}

	if err := pc.mailer.SendPartnerInvite(ctx, services.PartnerInviteEmail{
		To:        email,
		OwnerName: owner.DisplayName,
		Role:      string(role),
	}); err != nil {
		log.Warn("failed to send partner invite email", "partnershipID", partnership.ID, "error", err)
	}

	pc.notifyEmail(ctx, email, events.PARTNERSHIP_INVITE, partnership)

	log.Info("Partner invited", "ownerID", owner.ID, "partnershipID", partnership.ID, "role", role)
	return partnership, nil
}

func (pc *PartnershipController) ListOwned(ctx context.Context, owner *User) ([]Partnership, error) {
	return pc.partnershipRepo.ListByOwner(ctx, pc.db, owner.ID)
}

// ListInvitations returns the partnerships addressed to the user's email that
// have not ended.
func (pc *PartnershipController) ListInvitations(ctx context.Context, user *User) ([]Partnership, error) {
	partnerships, err := pc.partnershipRepo.ListByPartnerEmail(ctx, pc.db, user.Email)
	if err != nil {
		return nil, err
	}

	open := make([]Partnership, 0, len(partnerships))
	for _, partnership := range partnerships {
		if partnership.Status != PartnershipEnded {
			open = append(open, partnership)
		}
	}
	return open, nil
}

// Respond lets the invited partner accept or decline a pending invitation.
func (pc *PartnershipController) Respond(
	ctx context.Context,
	user *User,
	partnershipID uuid.UUID,
	req RespondRequest,
) (*Partnership, error) {
	log := pc.log.TraceFromContext(ctx).Function("Respond")

	partnership, err := pc.partnershipRepo.GetByID(ctx, pc.db, partnershipID)
	if err != nil {
		return nil, err
	}
	if !isPartner(partnership, user) {
		return nil, log.ErrorWithType(types.ErrNotFound, "partnership not found", "partnershipID", partnershipID)
	}
	if partnership.Status != PartnershipPending {
		return nil, log.ErrorWithType(types.ErrConflict, "invitation already answered", "status", partnership.Status)
	}

	now := pc.now()
	if req.Accept {
		partnership.Status = PartnershipActive
		partnership.AcceptedAt = &now
	} else {
		partnership.Status = PartnershipEnded
		partnership.EndedAt = &now
	}

	if err := pc.partnershipRepo.Update(ctx, pc.db, partnership); err != nil {
		return nil, err
	}

	pc.notifyUser(partnership.OwnerID, events.PARTNERSHIP_UPDATED, partnership)
	log.Info("Invitation answered", "partnershipID", partnershipID, "status", partnership.Status)
	return partnership, nil
}

// UpdateStatus moves a partnership along its lifecycle. The owner may pause,
// resume or end it; the partner may only end it.
func (pc *PartnershipController) UpdateStatus(
	ctx context.Context,
	user *User,
	partnershipID uuid.UUID,
	req StatusRequest,
) (*Partnership, error) {
	log := pc.log.TraceFromContext(ctx).Function("UpdateStatus")

	partnership, err := pc.partnershipRepo.GetByID(ctx, pc.db, partnershipID)
	if err != nil {
		return nil, err
	}

	owner := partnership.OwnerID == user.ID
	partner := isPartner(partnership, user)
	switch {
	case !owner && !partner:
		return nil, log.ErrorWithType(types.ErrNotFound, "partnership not found", "partnershipID", partnershipID)
	case !owner && req.Status != PartnershipEnded:
		return nil, log.ErrorWithType(types.ErrForbidden, "partners can only end a partnership")
	case owner && partnership.Status == PartnershipPending && req.Status == PartnershipActive:
		return nil, log.ErrorWithType(types.ErrForbidden, "only the partner can accept an invitation")
	case !partnership.CanTransition(req.Status):
		return nil, log.ErrorWithType(types.ErrValidation, "invalid status change",
			"from", partnership.Status,
			"to", req.Status)
	}

	partnership.Status = req.Status
	if req.Status == PartnershipEnded {
		now := pc.now()
		partnership.EndedAt = &now
	}

	if err := pc.partnershipRepo.Update(ctx, pc.db, partnership); err != nil {
		return nil, err
	}

	if owner {
		pc.notifyEmail(ctx, partnership.PartnerEmail, events.PARTNERSHIP_UPDATED, partnership)
	} else {
		pc.notifyUser(partnership.OwnerID, events.PARTNERSHIP_UPDATED, partnership)
	}

	log.Info("Partnership status changed", "partnershipID", partnershipID, "status", req.Status)
	return partnership, nil
}

func (pc *PartnershipController) UpdateSettings(
	ctx context.Context,
	owner *User,
	partnershipID uuid.UUID,
	req SettingsRequest,
) (*Partnership, error) {
	log := pc.log.TraceFromContext(ctx).Function("UpdateSettings")

	partnership, err := pc.partnershipRepo.GetByID(ctx, pc.db, partnershipID)
	if err != nil {
		return nil, err
	}
	if partnership.OwnerID != owner.ID {
		return nil, log.ErrorWithType(types.ErrNotFound, "partnership not found", "partnershipID", partnershipID)
	}
	if partnership.Status == PartnershipEnded {
		return nil, log.ErrorWithType(types.ErrConflict, "partnership has ended", "partnershipID", partnershipID)
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, log.ErrorWithType(types.ErrValidation, "role must be supporter or viewer", "role", *req.Role)
		}
		partnership.Role = *req.Role
	}
	partnership.ShowStreaks = boolOr(req.ShowStreaks, partnership.ShowStreaks)
	partnership.ShowLogs = boolOr(req.ShowLogs, partnership.ShowLogs)
	partnership.ShowNotes = boolOr(req.ShowNotes, partnership.ShowNotes)

	if err := pc.partnershipRepo.Update(ctx, pc.db, partnership); err != nil {
		return nil, err
	}

	pc.notifyEmail(ctx, partnership.PartnerEmail, events.PARTNERSHIP_UPDATED, partnership)
	return partnership, nil
}

// ListSharedHabits collects the shared habits of every owner with an active
// partnership to the user, filtered by that partnership's visibility flags.
func (pc *PartnershipController) ListSharedHabits(ctx context.Context, user *User) ([]SharedHabit, error) {
	partnerships, err := pc.partnershipRepo.ListByPartnerEmail(ctx, pc.db, user.Email)
	if err != nil {
		return nil, err
	}

	shared := make([]SharedHabit, 0)
	for i := range partnerships {
		partnership := &partnerships[i]
		if !partnership.IsActive() {
			continue
		}

		views, err := pc.sharedHabitsFor(ctx, partnership)
		if err != nil {
			return nil, err
		}
		shared = append(shared, views...)
	}
	return shared, nil
}

func (pc *PartnershipController) sharedHabitsFor(
	ctx context.Context,
	partnership *Partnership,
) ([]SharedHabit, error) {
	habits, err := pc.habitRepo.ListShared(ctx, pc.db, partnership.OwnerID)
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return nil, nil
	}

	now := pc.now()
	loc := repositories.LocationFor(ctx, pc.settingsRepo, pc.db, partnership.OwnerID)
	today := utils.TodayKey(now, loc)
	ownerName := ""
	if partnership.Owner != nil {
		ownerName = partnership.Owner.DisplayName
	}

	views := make([]SharedHabit, 0, len(habits))
	for i := range habits {
		habit := &habits[i]
		view := SharedHabit{
			PartnershipID: partnership.ID,
			OwnerName:     ownerName,
			Role:          partnership.Role,
			HabitID:       habit.ID,
			Title:         habit.Title,
			Description:   habit.Description,
			Type:          habit.Type,
			Frequency:     habit.Frequency.Data(),
			StartDate:     habit.StartDate,
		}

		if habit.IsBreak() {
			if partnership.ShowStreaks {
				snapshot := utils.BuildTimerSnapshot(habit, now, loc)
				view.Timer = &snapshot
			}
			views = append(views, view)
			continue
		}

		if partnership.ShowStreaks || partnership.ShowLogs {
			logs, err := pc.logRepo.ListByHabit(ctx, pc.db, habit.ID, types.DateRange{})
			if err != nil {
				return nil, err
			}
			if partnership.ShowStreaks {
				stats := utils.CalculateHabitStats(logs, habit.StartDate, today)
				view.Stats = &stats
			}
			if partnership.ShowLogs {
				view.Logs = recentLogs(logs, utils.AddDays(today, -(sharedLogDays-1)), today, partnership.ShowNotes)
			}
		}

		views = append(views, view)
	}
	return views, nil
}

// recentLogs keeps logs dated within [from, to] and blanks notes unless the
// partner may read them.
func recentLogs(logs []HabitLog, from, to string, showNotes bool) []HabitLog {
	recent := make([]HabitLog, 0, len(logs))
	for _, log := range logs {
		if log.Date < from || log.Date > to {
			continue
		}
		if !showNotes {
			log.Notes = ""
			log.Reason = ""
			log.Mood = nil
		}
		recent = append(recent, log)
	}
	return recent
}

func (pc *PartnershipController) notifyUser(userID uuid.UUID, eventType events.MessageType, partnership *Partnership) {
	if err := pc.publisher.PublishToUser(userID, eventType, partnershipEventData(partnership)); err != nil {
		pc.log.Function("notifyUser").Warn("failed to publish partnership event",
			"partnershipID", partnership.ID,
			"error", err)
	}
}

// notifyEmail publishes to the account registered with email, if any.
func (pc *PartnershipController) notifyEmail(
	ctx context.Context,
	email string,
	eventType events.MessageType,
	partnership *Partnership,
) {
	user, err := pc.userRepo.GetByEmail(ctx, pc.db, email)
	if err != nil {
		return
	}
	pc.notifyUser(user.ID, eventType, partnership)
}

func partnershipEventData(partnership *Partnership) map[string]any {
	return map[string]any{
		"partnershipId": partnership.ID.String(),
		"ownerId":       partnership.OwnerID.String(),
		"partnerEmail":  partnership.PartnerEmail,
		"status":        string(partnership.Status),
		"role":          string(partnership.Role),
	}
}

func isPartner(partnership *Partnership, user *User) bool {
	return partnership.PartnerEmail == NormalizeEmail(user.Email)
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
