package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ADDR", "DB_DRIVER", "DB_URL", "SECRET_KEY", "JWT_SECRET", "SESSION_TTL",
		"COOKIE_SECURE", "TIME_ZONE", "BCRYPT_COST", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithMissingEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "postgres://localhost/tasks")
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != DefaultAddr || cfg.DBDriver != DefaultDBDriver || cfg.SessionTTL != DefaultSessionTTL {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TimeZone.String() != DefaultTimeZone {
		t.Fatalf("expected %s, got %s", DefaultTimeZone, cfg.TimeZone)
	}
	if cfg.BcryptCost != bcrypt.DefaultCost || cfg.SecureCookie {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that already exist
	os.Unsetenv("DB_URL")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("SESSION_TTL")
	os.Unsetenv("DB_DRIVER")

	file := filepath.Join(t.TempDir(), "app.env")
	content := "DB_DRIVER=sqlite\nDB_URL=tasks.db\nJWT_SECRET=from-file\nSESSION_TTL=2h\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() {
		for _, k := range []string{"DB_DRIVER", "DB_URL", "JWT_SECRET", "SESSION_TTL"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.DBURL != "tasks.db" || cfg.SecretKey != "from-file" || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_RequiresSecretAndURL(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatalf("expected error without DB_URL")
	}

	t.Setenv("DB_URL", "tasks.db")
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatalf("expected error without SECRET_KEY")
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "tasks.db")
	t.Setenv("SECRET_KEY", "s3cret")

	t.Setenv("TIME_ZONE", "Mars/Olympus")
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatalf("expected error for unknown time zone")
	}
	t.Setenv("TIME_ZONE", "")

	t.Setenv("BCRYPT_COST", "99")
	if _, err := Load(filepath.Join(t.TempDir(), "none.env")); err == nil {
		t.Fatalf("expected error for out of range bcrypt cost")
	}
}
