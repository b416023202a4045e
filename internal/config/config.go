// Package config resolves the process configuration once at startup from
// an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Addr         string
	DBDriver     string
	DBURL        string
	SecretKey    string
	SessionTTL   time.Duration
	SecureCookie bool
	TimeZone     *time.Location
	BcryptCost   int
	LogLevel     string
	LogFormat    string
}

const (
	DefaultAddr       = ":8080"
	DefaultDBDriver   = "pgx"
	DefaultSessionTTL = 24 * time.Hour
	DefaultTimeZone   = "Africa/Cairo"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
)

// Load reads the given env files (".env" when none are given) and then the
// environment. A missing env file is not an error, missing required values are.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("could not load %s: %w", f, err)
		}
	}

	cfg := Config{
		Addr:      coalesce(os.Getenv("ADDR"), DefaultAddr),
		DBDriver:  coalesce(os.Getenv("DB_DRIVER"), DefaultDBDriver),
		DBURL:     os.Getenv("DB_URL"),
		SecretKey: coalesce(os.Getenv("SECRET_KEY"), os.Getenv("JWT_SECRET")),
		LogLevel:  coalesce(os.Getenv("LOG_LEVEL"), DefaultLogLevel),
		LogFormat: coalesce(os.Getenv("LOG_FORMAT"), DefaultLogFormat),
	}

	if cfg.DBURL == "" {
		return Config{}, errors.New("DB_URL is required")
	}
	if cfg.SecretKey == "" {
		return Config{}, errors.New("SECRET_KEY is required")
	}

	var err error
	cfg.SessionTTL, err = time.ParseDuration(coalesce(os.Getenv("SESSION_TTL"), DefaultSessionTTL.String()))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cfg.SecureCookie, err = strconv.ParseBool(coalesce(os.Getenv("COOKIE_SECURE"), "false"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	cfg.TimeZone, err = time.LoadLocation(coalesce(os.Getenv("TIME_ZONE"), DefaultTimeZone))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}

	cfg.BcryptCost, err = strconv.Atoi(coalesce(os.Getenv("BCRYPT_COST"), strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil {
		return Config{}, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return cfg, nil
}

func coalesce(args ...string) string {
	for _, s := range args {
		if s != "" {
			return s
		}
	}
	return ""
}
