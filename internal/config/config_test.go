package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadPlanCatalog(t *testing.T) {
	path := writeCatalog(t, `
plans:
  - name: Seed
    tokens_per_day: 10
    price_usd: 0
  - name: Growth
    tokens_per_day: 25
    price_usd: 12
`)
	plans, err := LoadPlanCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("tiers = %d, want 2", len(plans))
	}
	if plans[1].Name != "Growth" || plans[1].TokensPerDay != 25 || plans[1].PriceUSD != 12 {
		t.Fatalf("growth tier = %+v", plans[1])
	}
}

func TestLoadPlanCatalogRejectsInvalidTier(t *testing.T) {
	path := writeCatalog(t, `
plans:
  - name: Broken
    tokens_per_day: 0
`)
	if _, err := LoadPlanCatalog(path); err == nil {
		t.Fatalf("expected an error for a zero-limit tier")
	}
}

func TestLoadPlanCatalogRejectsEmpty(t *testing.T) {
	path := writeCatalog(t, "plans: []\n")
	if _, err := LoadPlanCatalog(path); err == nil {
		t.Fatalf("expected an error for an empty catalog")
	}
}

func TestPlanLimitFallsBackForUnknownPlan(t *testing.T) {
	cfg := &Config{Plans: DefaultPlans(), DefaultPlanLimit: 10}

	if got := cfg.PlanLimit("Authority"); got != 100 {
		t.Fatalf("authority limit = %d, want 100", got)
	}
	if got := cfg.PlanLimit("Enterprise"); got != 10 {
		t.Fatalf("unknown plan limit = %d, want default 10", got)
	}
	if got := cfg.PlanPrice("Growth"); got != 12 {
		t.Fatalf("growth price = %d, want 12", got)
	}
	if got := cfg.PlanPrice("Enterprise"); got != 0 {
		t.Fatalf("unknown plan price = %d, want 0", got)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "42")
	if got := GetEnvAsInt("TEST_INT_VAR", 7, nil); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	t.Setenv("TEST_INT_VAR", "not-a-number")
	if got := GetEnvAsInt("TEST_INT_VAR", 7, nil); got != 7 {
		t.Fatalf("got %d, want default 7", got)
	}
	if got := GetEnvAsInt("TEST_INT_VAR_MISSING", 7, nil); got != 7 {
		t.Fatalf("got %d, want default 7", got)
	}
}
