package seed

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.SeedConfig.DBPath == "" {
		t.Fatal("db path must default to a non-empty value")
	}
	if cfg.SeedConfig.Verbose {
		t.Fatal("verbose must default to false")
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SHELFIE_DB_PATH", "/env/shelfie.db")

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-db-path", "/flag/shelfie.db", "-v"})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.SeedConfig.DBPath != "/flag/shelfie.db" {
		t.Fatalf("db path = %q, want flag value", cfg.SeedConfig.DBPath)
	}
	if !cfg.SeedConfig.Verbose {
		t.Fatal("verbose flag must be honored")
	}
}

func TestParseConfigEnvFallback(t *testing.T) {
	t.Setenv("SHELFIE_DB_PATH", "/env/shelfie.db")

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.SeedConfig.DBPath != "/env/shelfie.db" {
		t.Fatalf("db path = %q, want env value", cfg.SeedConfig.DBPath)
	}
}
