package encouragementController

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

const (
	maxMessageLength = 500
	maxEmojiLength   = 16
)

type SendRequest struct {
	Message string  `json:"message"`
	Emoji   *string `json:"emoji"`
}

type EncouragementController struct {
	encouragementRepo repositories.EncouragementRepository
	partnershipRepo   repositories.PartnershipRepository
	habitRepo         repositories.HabitRepository
	userRepo          repositories.UserRepository
	settingsRepo      repositories.UserSettingsRepository
	mailer            services.Mailer
	publisher         events.Publisher
	db                *gorm.DB
	log               logger.Logger
}

type EncouragementControllerInterface interface {
	Send(ctx context.Context, sender *User, habitID uuid.UUID, req SendRequest) (*Encouragement, error)
	List(ctx context.Context, owner *User, habitID uuid.UUID) ([]Encouragement, error)
}

func New(
	repos repositories.Repository,
	services services.Service,
	publisher events.Publisher,
	db database.DB,
) EncouragementControllerInterface {
	return &EncouragementController{
		encouragementRepo: repos.Encouragement,
		partnershipRepo:   repos.Partnership,
		habitRepo:         repos.Habit,
		userRepo:          repos.User,
		settingsRepo:      repos.UserSettings,
		mailer:            services.Mailer,
		publisher:         publisher,
		db:                db.SQL,
		log:               logger.New("encouragementController"),
	}
}

// Send stores a message from an active supporter on one of the owner's
// shared habits. Viewers and strangers are refused.
func (ec *EncouragementController) Send(
	ctx context.Context,
	sender *User,
	habitID uuid.UUID,
	req SendRequest,
) (*Encouragement, error) {
	log := ec.log.TraceFromContext(ctx).Function("Send")

	habit, err := ec.habitRepo.GetByID(ctx, ec.db, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID == sender.ID {
		return nil, log.ErrorWithType(types.ErrValidation, "cannot encourage your own habit", "habitID", habitID)
	}
	if !habit.IsShared {
		return nil, log.ErrorWithType(types.ErrNotFound, "habit not found", "habitID", habitID)
	}

	partnership, err := ec.partnershipRepo.FindActive(ctx, ec.db, habit.UserID, NormalizeEmail(sender.Email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, log.ErrorWithType(types.ErrForbidden, "no active partnership with habit owner")
		}
		return nil, err
	}
	if partnership.Role != PartnerRoleSupporter {
		return nil, log.ErrorWithType(types.ErrForbidden, "viewers cannot send encouragement",
			"partnershipID", partnership.ID)
	}

	message := utils.SanitizeText(req.Message, maxMessageLength)
	if message == "" {
		return nil, log.ErrorWithType(types.ErrValidation, "message is required")
	}

	encouragement := &Encouragement{
		HabitID:     habit.ID,
		SenderEmail: NormalizeEmail(sender.Email),
		Message:     message,
	}
	if req.Emoji != nil {
		if emoji := utils.SanitizeText(*req.Emoji, maxEmojiLength); emoji != "" {
			encouragement.Emoji = &emoji
		}
	}

	if err := ec.encouragementRepo.Create(ctx, ec.db, encouragement); err != nil {
		return nil, err
	}

	ec.notifyOwner(ctx, habit, encouragement)

	log.Info("Encouragement sent", "habitID", habitID, "encouragementID", encouragement.ID)
	return encouragement, nil
}

func (ec *EncouragementController) List(
	ctx context.Context,
	owner *User,
	habitID uuid.UUID,
) ([]Encouragement, error) {
	habit, err := ec.habitRepo.GetUserHabit(ctx, ec.db, owner.ID, habitID)
	if err != nil {
		return nil, err
	}
	return ec.encouragementRepo.ListByHabit(ctx, ec.db, habit.ID)
}

// notifyOwner mails the owner when they opted in and pushes a realtime event.
// Neither failure undoes the stored message.
func (ec *EncouragementController) notifyOwner(ctx context.Context, habit *Habit, encouragement *Encouragement) {
	log := ec.log.TraceFromContext(ctx).Function("notifyOwner")

	settings, err := ec.settingsRepo.GetOrCreate(ctx, ec.db, habit.UserID)
	if err != nil {
		log.Warn("failed to load owner settings", "userID", habit.UserID, "error", err)
	} else if settings.EmailNotifications {
		owner, err := ec.userRepo.GetByID(ctx, ec.db, habit.UserID)
		if err != nil {
			log.Warn("failed to load habit owner", "userID", habit.UserID, "error", err)
		} else if err := ec.mailer.SendEncouragement(ctx, services.EncouragementEmail{
			To:          owner.Email,
			OwnerName:   owner.DisplayName,
			SenderEmail: encouragement.SenderEmail,
			HabitTitle:  habit.Title,
			Message:     encouragement.Message,
		}); err != nil {
			log.Warn("failed to send encouragement email", "encouragementID", encouragement.ID, "error", err)
		}
	}

	data := map[string]any{
		"encouragementId": encouragement.ID.String(),
		"habitId":         habit.ID.String(),
		"habitTitle":      habit.Title,
		"senderEmail":     encouragement.SenderEmail,
		"message":         encouragement.Message,
		"sentAt":          time.Now().UTC().Format(time.RFC3339),
	}
	if encouragement.Emoji != nil {
		data["emoji"] = *encouragement.Emoji
	}
	if err := ec.publisher.PublishToUser(habit.UserID, events.ENCOURAGEMENT_RECEIVED, data); err != nil {
		log.Warn("failed to publish encouragement", "encouragementID", encouragement.ID, "error", err)
	}
}
