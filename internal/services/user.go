package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyarc/narrative-backend/internal/clients/redis"
	"github.com/storyarc/narrative-backend/internal/config"
	"github.com/storyarc/narrative-backend/internal/logger"
	"github.com/storyarc/narrative-backend/internal/repos"
	"github.com/storyarc/narrative-backend/internal/types"
)

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
	PurchasePlan(ctx context.Context, userID uuid.UUID, plan string) (*types.User, error)
	CancelPlan(ctx context.Context, userID uuid.UUID) (*types.User, error)
	RecordUsage(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      *config.Config
	userRepo repos.UserRepo
	cache    redis.Cache
}

func NewUserService(db *gorm.DB, log *logger.Logger, cfg *config.Config, userRepo repos.UserRepo, cache redis.Cache) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		cfg:      cfg,
		userRepo: userRepo,
		cache:    cache,
	}
}

// GetMe returns the identity snapshot, first applying the lazy daily reset so
// the reported ledger never shows yesterday's consumption.
func (us *userService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	if err := us.userRepo.ResetUsageIfStale(ctx, nil, userID, time.Now()); err != nil {
		return nil, fmt.Errorf("reset usage: %w", err)
	}
	return us.userRepo.GetByID(ctx, nil, userID)
}

func (us *userService) PurchasePlan(ctx context.Context, userID uuid.UUID, plan string) (*types.User, error) {
	plan = strings.TrimSpace(plan)
	limit := us.cfg.PlanLimit(plan)

	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return us.userRepo.SetPlan(ctx, tx, userID, &plan, true, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("purchase plan: %w", err)
	}
	us.invalidateAnalytics(ctx)
	us.log.Info("Plan purchased", "user_id", userID, "plan", plan, "limit", limit)
	return us.userRepo.GetByID(ctx, nil, userID)
}

// CancelPlan reverts to the free tier. The used counter is deliberately left
// alone; only the daily reset zeroes it.
func (us *userService) CancelPlan(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return us.userRepo.SetPlan(ctx, tx, userID, nil, false, us.cfg.FreeTierLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("cancel plan: %w", err)
	}
	us.invalidateAnalytics(ctx)
	us.log.Info("Plan cancelled", "user_id", userID)
	return us.userRepo.GetByID(ctx, nil, userID)
}

// RecordUsage consumes one ledger unit. The increment is a single conditional
// update in the repo, so it either charges below the ceiling or fails with
// apperr.ErrQuotaExceeded without mutating anything.
func (us *userService) RecordUsage(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	if err := us.userRepo.ResetUsageIfStale(ctx, nil, userID, time.Now()); err != nil {
		return nil, fmt.Errorf("reset usage: %w", err)
	}
	if err := us.userRepo.ConsumeToken(ctx, nil, userID); err != nil {
		return nil, err
	}
	return us.userRepo.GetByID(ctx, nil, userID)
}

func (us *userService) invalidateAnalytics(ctx context.Context) {
	if us.cache == nil {
		return
	}
	if err := us.cache.Delete(ctx, AnalyticsCacheKey); err != nil {
		us.log.Warn("Failed to invalidate analytics cache", "error", err)
	}
}
