package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Midtrans  MidtransConfig
	Mpesa     MpesaConfig
	Bank      BankConfig
	Reconcile ReconcileConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AdminEmail string
}

type MidtransConfig struct {
	ServerKey    string
	IsProduction bool
}

type MpesaConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
}

// BankConfig holds the static payee instructions handed to donors who
// choose the manual bank-transfer rail.
type BankConfig struct {
	AccountName   string
	AccountNumber string
	BankName      string
	Branch        string
	SwiftCode     string
}

type ReconcileConfig struct {
	// FallbackWindow bounds the heuristic match: only the last N pending
	// donations of a gateway are ever scanned for a mangled signal.
	FallbackWindow int
	// VerifyTimeoutSeconds bounds the authoritative provider verification
	// call. On expiry the signal is treated as unresolved, not as failure.
	VerifyTimeoutSeconds int
	// InitiateRatePerMinute caps donation initiations per client IP.
	InitiateRatePerMinute int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Tumaini Foundation"),
			AdminEmail: getEnv("ADMIN_ALERT_EMAIL", ""),
		},
		Midtrans: MidtransConfig{
			ServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
			IsProduction: getEnv("MIDTRANS_IS_PRODUCTION", "false") == "true",
		},
		Mpesa: MpesaConfig{
			BaseURL:        getEnv("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke"),
			ConsumerKey:    getEnv("MPESA_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("MPESA_CONSUMER_SECRET", ""),
			ShortCode:      getEnv("MPESA_SHORTCODE", ""),
			Passkey:        getEnv("MPESA_PASSKEY", ""),
			CallbackURL:    getEnv("MPESA_CALLBACK_URL", ""),
		},
		Bank: BankConfig{
			AccountName:   getEnv("BANK_ACCOUNT_NAME", "Tumaini Foundation"),
			AccountNumber: getEnv("BANK_ACCOUNT_NUMBER", ""),
			BankName:      getEnv("BANK_NAME", ""),
			Branch:        getEnv("BANK_BRANCH", ""),
			SwiftCode:     getEnv("BANK_SWIFT_CODE", ""),
		},
		Reconcile: ReconcileConfig{
			FallbackWindow:        getEnvAsInt("RECONCILE_FALLBACK_WINDOW", 25),
			VerifyTimeoutSeconds:  getEnvAsInt("RECONCILE_VERIFY_TIMEOUT_SECONDS", 10),
			InitiateRatePerMinute: getEnvAsInt("DONATION_RATE_PER_MINUTE", 10),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
