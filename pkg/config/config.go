package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
	Timetable TimetableConfig
	Downloads DownloadConfig
}

type DatabaseConfig struct {
	Driver       string
	Path         string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuthConfig seeds the first dashboard account on an empty users table.
type AuthConfig struct {
	BootstrapUsername string
	BootstrapPassword string
}

// SchedulerConfig controls the allocation engine and where it reads and writes tables.
type SchedulerConfig struct {
	DataDir          string
	OutputFile       string
	BreakPeriod      int
	RegularThreshold int
	TeacherPolicy    string
	CacheEnabled     bool
	CacheTTL         time.Duration
}

// TimetableConfig shapes the weekly grids rendered from a schedule.
type TimetableConfig struct {
	Days    []string
	Periods int
}

// DownloadConfig governs signed links to the raw schedule file.
type DownloadConfig struct {
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Path:         v.GetString("DB_PATH"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Auth = AuthConfig{
		BootstrapUsername: v.GetString("AUTH_BOOTSTRAP_USERNAME"),
		BootstrapPassword: v.GetString("AUTH_BOOTSTRAP_PASSWORD"),
	}

	cfg.Scheduler = SchedulerConfig{
		DataDir:          v.GetString("SCHEDULER_DATA_DIR"),
		OutputFile:       v.GetString("SCHEDULER_OUTPUT_FILE"),
		BreakPeriod:      v.GetInt("SCHEDULER_BREAK_PERIOD"),
		RegularThreshold: v.GetInt("SCHEDULER_REGULAR_THRESHOLD"),
		TeacherPolicy:    v.GetString("SCHEDULER_TEACHER_POLICY"),
		CacheEnabled:     v.GetBool("SCHEDULER_CACHE_ENABLED"),
		CacheTTL:         parseDuration(v.GetString("SCHEDULER_CACHE_TTL"), 30*time.Minute),
	}

	periods := v.GetInt("TIMETABLE_PERIODS")
	if periods <= 0 {
		periods = 12
	}
	cfg.Timetable = TimetableConfig{
		Days:    splitAndTrim(v.GetString("TIMETABLE_DAYS")),
		Periods: periods,
	}

	cfg.Downloads = DownloadConfig{
		SignedURLSecret: v.GetString("DOWNLOAD_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("DOWNLOAD_SIGNED_URL_TTL"), 15*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "./users.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("AUTH_BOOTSTRAP_USERNAME", "admin")
	v.SetDefault("AUTH_BOOTSTRAP_PASSWORD", "1234")

	v.SetDefault("SCHEDULER_DATA_DIR", "./data")
	v.SetDefault("SCHEDULER_OUTPUT_FILE", "./output.csv")
	v.SetDefault("SCHEDULER_BREAK_PERIOD", 5)
	v.SetDefault("SCHEDULER_REGULAR_THRESHOLD", 10)
	v.SetDefault("SCHEDULER_TEACHER_POLICY", "first_eligible")
	v.SetDefault("SCHEDULER_CACHE_ENABLED", true)
	v.SetDefault("SCHEDULER_CACHE_TTL", "30m")

	v.SetDefault("TIMETABLE_DAYS", "Mon,Tue,Wed,Thu,Fri")
	v.SetDefault("TIMETABLE_PERIODS", 12)

	v.SetDefault("DOWNLOAD_SIGNED_URL_SECRET", "dev_download_secret")
	v.SetDefault("DOWNLOAD_SIGNED_URL_TTL", "15m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
