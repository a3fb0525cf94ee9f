// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("MONGO_URI", "mongodb://localhost:27017")
	os.Setenv("SWEEP_INTERVAL", "90s")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.SweepInterval != 90*time.Second {
		t.Errorf("expected sweep interval 90s, got %s", cfg.SweepInterval)
	}
	if cfg.Database != "onevote" {
		t.Errorf("expected default database, got %q", cfg.Database)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-m", "mongodb://test", "-db", "votes", "-sweep", "30s"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.Database != "votes" {
		t.Errorf("expected database votes, got %q", cfg.Database)
	}
}

func TestParseFlags_MissingURI(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{}); err == nil {
		t.Fatal("expected error when MONGO_URI is missing")
	}
}
