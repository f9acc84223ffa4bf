package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyarc/narrative-backend/internal/apperr"
	"github.com/storyarc/narrative-backend/internal/logger"
	"github.com/storyarc/narrative-backend/internal/types"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *types.User) error
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	CountUsers(ctx context.Context, tx *gorm.DB) (int64, error)
	CountPaidUsers(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByPlan(ctx context.Context, tx *gorm.DB, plan string) (int64, error)
	SumTokensUsed(ctx context.Context, tx *gorm.DB) (int64, error)
	SetPlan(ctx context.Context, tx *gorm.DB, userID uuid.UUID, plan *string, hasPaid bool, tokensLimit int) error
	ConsumeToken(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	ResetUsageIfStale(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ur.db
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) error {
	return ur.conn(tx).WithContext(ctx).Create(user).Error
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	var user types.User
	err := ur.conn(tx).WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	var user types.User
	err := ur.conn(tx).WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) CountUsers(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := ur.conn(tx).WithContext(ctx).Model(&types.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (ur *userRepo) CountPaidUsers(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("has_paid = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (ur *userRepo) CountByPlan(ctx context.Context, tx *gorm.DB, plan string) (int64, error) {
	var count int64
	if err := ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("plan = ?", plan).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (ur *userRepo) SumTokensUsed(ctx context.Context, tx *gorm.DB) (int64, error) {
	var total *int64
	if err := ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Select("SUM(tokens_used)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (ur *userRepo) SetPlan(ctx context.Context, tx *gorm.DB, userID uuid.UUID, plan *string, hasPaid bool, tokensLimit int) error {
	return ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"plan":         plan,
			"has_paid":     hasPaid,
			"tokens_limit": tokensLimit,
		}).Error
}

// ConsumeToken increments tokens_used with a single conditional UPDATE so two
// concurrent requests from the same identity can never both pass the ceiling.
// Zero rows affected means the ledger was already at its limit.
func (ur *userRepo) ConsumeToken(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	result := ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("id = ? AND tokens_used < tokens_limit", userID).
		UpdateColumn("tokens_used", gorm.Expr("tokens_used + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrQuotaExceeded
	}
	return nil
}

// ResetUsageIfStale zeroes the ledger the first time the identity is touched
// after UTC midnight. The WHERE guard makes concurrent resets idempotent.
func (ur *userRepo) ResetUsageIfStale(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) error {
	dayStart := now.UTC().Truncate(24 * time.Hour)
	return ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("id = ? AND usage_reset_at < ?", userID, dayStart).
		UpdateColumns(map[string]any{
			"tokens_used":    0,
			"usage_reset_at": dayStart,
		}).Error
}
