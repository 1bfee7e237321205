package config

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	DB      *sql.DB
	SMTP    SMTPConfig
	Gateway GatewayConfig
	SiteURL string
	Port    int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// GatewayConfig holds the payment gateway credentials and endpoint.
type GatewayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

var AppConfig *Config

// Log is the shared application logger. Request logging is handled
// separately by the Fiber middleware.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

func loadSettings() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("iete")
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("site.url", "http://localhost:8080")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.name", "iete")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("smtp.host", "smtp.gmail.com")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("gateway.base_url", "https://api.razorpay.com/v1")
	viper.SetDefault("gateway.timeout", "10s")

	if err := viper.ReadInConfig(); err != nil {
		Log.Info().Msg("No config file found, using defaults and environment")
	}
}

// InitDB loads settings and opens the shared database pool.
func InitDB() {
	loadSettings()

	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=10",
		viper.GetString("database.host"),
		viper.GetInt("database.port"),
		viper.GetString("database.user"),
		viper.GetString("database.password"),
		viper.GetString("database.name"),
		viper.GetString("database.sslmode"),
	)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		Log.Fatal().Err(err).Msg("Failed to open database connection")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err = db.Ping(); err != nil {
		Log.Fatal().Err(err).Msg("Cannot establish database connection")
	}

	AppConfig = &Config{
		DB:      db,
		SiteURL: viper.GetString("site.url"),
		Port:    viper.GetInt("server.port"),
		SMTP: SMTPConfig{
			Host:     viper.GetString("smtp.host"),
			Port:     viper.GetInt("smtp.port"),
			Username: viper.GetString("smtp.username"),
			Password: viper.GetString("smtp.password"),
			From:     viper.GetString("smtp.from"),
		},
		Gateway: GatewayConfig{
			BaseURL:   viper.GetString("gateway.base_url"),
			KeyID:     viper.GetString("gateway.key_id"),
			KeySecret: viper.GetString("gateway.key_secret"),
			Timeout:   viper.GetDuration("gateway.timeout"),
		},
	}
	Log.Info().Str("db", viper.GetString("database.name")).Msg("Database connected successfully")
}

func GetDB() *sql.DB {
	return AppConfig.DB
}
