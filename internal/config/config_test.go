package config_test

import (
	"testing"
	"time"

	"github.com/spec-kit/careteam-transfer/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Job.ProgramTag != "DIABETES" {
		t.Errorf("program tag = %s, want DIABETES", cfg.Job.ProgramTag)
	}
	if cfg.Job.AdultAgeYears != 18 {
		t.Errorf("adult age = %d, want 18", cfg.Job.AdultAgeYears)
	}
	if cfg.Job.RunLockTTL() != 10*time.Minute {
		t.Errorf("run lock ttl = %v, want 10m", cfg.Job.RunLockTTL())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JOB_SCOPE_NAME", "mercy-health")
	t.Setenv("JOB_PROGRAM_TAG", "CYSTIC_FIBROSIS")
	t.Setenv("JOB_ADULT_AGE_YEARS", "21")
	t.Setenv("JOB_RUN_LOCK_TTL_SECONDS", "120")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Job.ScopeName != "mercy-health" {
		t.Errorf("scope = %s", cfg.Job.ScopeName)
	}
	if cfg.Job.ProgramTag != "CYSTIC_FIBROSIS" {
		t.Errorf("program tag = %s", cfg.Job.ProgramTag)
	}
	if cfg.Job.AdultAgeYears != 21 {
		t.Errorf("adult age = %d", cfg.Job.AdultAgeYears)
	}
	if cfg.Job.RunLockTTL() != 2*time.Minute {
		t.Errorf("run lock ttl = %v", cfg.Job.RunLockTTL())
	}
}

func TestLoadRejectsInvalidAdultAge(t *testing.T) {
	t.Setenv("JOB_ADULT_AGE_YEARS", "-1")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for negative adult age")
	}
}
