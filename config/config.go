package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName   string `json:"appname"`
	AppEnv    string `json:"appenv"`
	AppPort   uint16 `json:"appport"`
	GinMode   string `json:"ginmode"`
	DBDriver  string `json:"dbdriver"`
	DBHost    string `json:"dbhost"`
	DBPort    uint16 `json:"dbport"`
	DBName    string `json:"dbname"`
	DBUser    string `json:"dbuser"`
	DBPass    string `json:"dbpass"`
	DBSSLMode string `json:"dbsslmode"`
	JWTSecret string `json:"-"`

	MediaRoot string `json:"media_root"`
	MediaURL  string `json:"media_url"`

	SMTPHost string `json:"smtp_host"`
	SMTPPort int    `json:"smtp_port"`
	SMTPUser string `json:"smtp_user"`
	SMTPPass string `json:"-"`
	SMTPFrom string `json:"smtp_from"`

	KafkaBrokers []string `json:"kafka_brokers"`
	KafkaTopic   string   `json:"kafka_topic"`

	LogLevel    string `json:"log_level"`
	LogFormat   string `json:"log_format"`
	GeoIPDBPath string `json:"geoip_db_path"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// The .env file is optional; plain environment variables still apply.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Error loading .env file: %v", err)
		}

		appPort, _ := strconv.ParseUint(getEnv("APPPORT", "8080"), 10, 16)
		dbPort, _ := strconv.ParseUint(getEnv("DBPORT", "5432"), 10, 16)
		smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))

		config = &Config{
			AppName:      getEnv("APPNAME", "veterinary-salons"),
			AppEnv:       os.Getenv("APPENV"),
			AppPort:      uint16(appPort),
			GinMode:      getEnv("GINMODE", "debug"),
			DBDriver:     strings.ToLower(getEnv("DBDRIVER", "postgres")),
			DBHost:       getEnv("DBHOST", "localhost"),
			DBPort:       uint16(dbPort),
			DBName:       os.Getenv("DBNAME"),
			DBUser:       os.Getenv("DBUSER"),
			DBPass:       os.Getenv("DBPASS"),
			DBSSLMode:    getEnv("DBSSLMODE", "disable"),
			JWTSecret:    os.Getenv("JWTSECRET"),
			MediaRoot:    getEnv("MEDIA_ROOT", "media"),
			MediaURL:     getEnv("MEDIA_URL", "/media/"),
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     smtpPort,
			SMTPUser:     os.Getenv("SMTP_USER"),
			SMTPPass:     os.Getenv("SMTP_PASS"),
			SMTPFrom:     getEnv("SMTP_FROM", os.Getenv("SMTP_USER")),
			KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "bookings"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			LogFormat:    getEnv("LOG_FORMAT", "text"),
			GeoIPDBPath:  os.Getenv("GEOIP_DB_PATH"),
		}
	})
	return config
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// isTestEnv reads APPENV directly so tests that set it after the config
// singleton was built still get the in-memory database.
func isTestEnv() bool {
	return os.Getenv("APPENV") == "test"
}

// ConnectDatabase opens the gorm connection for the configured driver.
// Under APPENV=test a fresh in-memory sqlite database is returned instead.
func ConnectDatabase() (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	if isTestEnv() {
		dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	}

	cfg := LoadConfig()
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres", "postgresql", "":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DBDRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}
