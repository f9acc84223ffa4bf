package repos

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storyarc/narrative-backend/internal/apperr"
	"github.com/storyarc/narrative-backend/internal/logger"
	"github.com/storyarc/narrative-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&types.User{}, &types.GenerationLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		database.Exec("DELETE FROM generation_log")
		database.Exec("DELETE FROM user")
	})
	return database
}

func createUser(t *testing.T, repo UserRepo, used, limit int) *types.User {
	t.Helper()
	user := &types.User{
		ID:           uuid.New(),
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "x",
		Role:         types.RoleUser,
		TokensUsed:   used,
		TokensLimit:  limit,
		UsageResetAt: time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := repo.Create(context.Background(), nil, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestConsumeTokenStopsExactlyAtLimit(t *testing.T) {
	repo := NewUserRepo(newTestDB(t), logger.Nop())
	user := createUser(t, repo, 0, 3)
	ctx := context.Background()

	successes := 0
	for i := 0; i < 5; i++ {
		err := repo.ConsumeToken(ctx, nil, user.ID)
		if err == nil {
			successes++
			continue
		}
		if !errors.Is(err, apperr.ErrQuotaExceeded) {
			t.Fatalf("attempt %d: err = %v, want ErrQuotaExceeded", i, err)
		}
	}
	if successes != 3 {
		t.Fatalf("successes = %d, want 3", successes)
	}

	reloaded, err := repo.GetByID(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.TokensUsed != 3 {
		t.Fatalf("tokens used = %d, want 3", reloaded.TokensUsed)
	}
}

func TestConsumeTokenConcurrentRequestsRespectCeiling(t *testing.T) {
	database := newTestDB(t)
	// One pooled connection serializes the writes at the driver; the callers
	// still race, which is the scenario the conditional UPDATE guards.
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	repo := NewUserRepo(database, logger.Nop())
	user := createUser(t, repo, 0, 3)

	var (
		wg        sync.WaitGroup
		successes atomic.Int64
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.ConsumeToken(context.Background(), nil, user.ID)
			if err == nil {
				successes.Add(1)
				return
			}
			if !errors.Is(err, apperr.ErrQuotaExceeded) {
				t.Errorf("consume: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 3 {
		t.Fatalf("successes = %d, want 3", successes.Load())
	}
	reloaded, err := repo.GetByID(context.Background(), nil, user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.TokensUsed != 3 {
		t.Fatalf("tokens used = %d, exceeded the ceiling", reloaded.TokensUsed)
	}
}

func TestConsumeTokenUnknownUser(t *testing.T) {
	repo := NewUserRepo(newTestDB(t), logger.Nop())
	err := repo.ConsumeToken(context.Background(), nil, uuid.New())
	if !errors.Is(err, apperr.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded for missing row", err)
	}
}

func TestResetUsageIfStaleIsIdempotent(t *testing.T) {
	database := newTestDB(t)
	repo := NewUserRepo(database, logger.Nop())
	ctx := context.Background()
	user := createUser(t, repo, 4, 5)

	yesterday := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	if err := database.Model(&types.User{}).Where("id = ?", user.ID).
		UpdateColumn("usage_reset_at", yesterday).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	now := time.Now()
	if err := repo.ResetUsageIfStale(ctx, nil, user.ID, now); err != nil {
		t.Fatalf("first reset: %v", err)
	}
	reloaded, err := repo.GetByID(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.TokensUsed != 0 {
		t.Fatalf("tokens used = %d, want 0", reloaded.TokensUsed)
	}

	// A second reset the same day must not zero fresh consumption.
	if err := repo.ConsumeToken(ctx, nil, user.ID); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := repo.ResetUsageIfStale(ctx, nil, user.ID, now); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	reloaded, err = repo.GetByID(ctx, nil, user.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.TokensUsed != 1 {
		t.Fatalf("same-day reset zeroed the ledger: %d", reloaded.TokensUsed)
	}
}

func TestGetByEmailNotFound(t *testing.T) {
	repo := NewUserRepo(newTestDB(t), logger.Nop())
	_, err := repo.GetByEmail(context.Background(), nil, "ghost@example.com")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAggregateQueries(t *testing.T) {
	repo := NewUserRepo(newTestDB(t), logger.Nop())
	ctx := context.Background()

	growth := "Growth"
	createUser(t, repo, 2, 5)
	paid := createUser(t, repo, 9, 25)
	if err := repo.SetPlan(ctx, nil, paid.ID, &growth, true, 25); err != nil {
		t.Fatalf("set plan: %v", err)
	}

	total, err := repo.CountUsers(ctx, nil)
	if err != nil || total != 2 {
		t.Fatalf("count users = %d (%v), want 2", total, err)
	}
	paidCount, err := repo.CountPaidUsers(ctx, nil)
	if err != nil || paidCount != 1 {
		t.Fatalf("paid users = %d (%v), want 1", paidCount, err)
	}
	growthCount, err := repo.CountByPlan(ctx, nil, "Growth")
	if err != nil || growthCount != 1 {
		t.Fatalf("growth users = %d (%v), want 1", growthCount, err)
	}
	sum, err := repo.SumTokensUsed(ctx, nil)
	if err != nil || sum != 11 {
		t.Fatalf("token sum = %d (%v), want 11", sum, err)
	}
}

func TestSumTokensUsedEmptyTable(t *testing.T) {
	repo := NewUserRepo(newTestDB(t), logger.Nop())
	sum, err := repo.SumTokensUsed(context.Background(), nil)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 0 {
		t.Fatalf("sum = %d, want 0", sum)
	}
}
