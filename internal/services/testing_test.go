package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storyarc/narrative-backend/internal/clients/redis"
	"github.com/storyarc/narrative-backend/internal/config"
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

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:     "test-secret",
		TokenTTL:         7 * 24 * time.Hour,
		GenerateTimeout:  5 * time.Second,
		FreeTierLimit:    5,
		DefaultPlanLimit: 10,
		Plans:            config.DefaultPlans(),
		AnalyticsTTL:     60 * time.Second,
	}
}

// memoryCache is an in-process stand-in for the Redis cache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) GetJSON(ctx context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.deletes = append(m.deletes, key)
	return nil
}

func (m *memoryCache) Ping(ctx context.Context) error { return nil }
func (m *memoryCache) Close() error                   { return nil }

// fakeGenerator is an in-process stand-in for the generation service client.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	systems []string
	users   []string
	result  []byte
	err     error
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testAnswerSet() types.AnswerSet {
	return types.AnswerSet{
		Audience:     "potential clients",
		Goal:         "attract retained work",
		Character:    "an independent consultant",
		Stage:        "pivoting",
		Struggle:     "invisible in a crowded niche",
		TurningPoint: "a failed launch that forced a rethink",
		Strengths:    "plain speech and deep expertise",
		Outcome:      "book a discovery call",
	}
}

var nopLog = logger.Nop()
