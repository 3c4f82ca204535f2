package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string

	// Host platform (LNbits compatible) the extension talks to.
	LNbitsURL    string
	LNbitsAPIKey string

	// Admin API key guarding the settings endpoints.
	AdminKey string

	// Default wallet seeded on first start so the API is usable
	// without a separate provisioning step.
	WalletAdminKey   string
	WalletInvoiceKey string

	// SMTP for best-effort confirmation mail.
	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string

	// Reject bookings outside the schedule window or inside an
	// unavailable block. The original extension let payment alone
	// gate validity; keep that reachable by switching this off.
	StrictSlotCheck bool
}

// Load reads the .env file (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file. Using environment variables directly.")
	}

	smtpPort, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	return Config{
		Port:             getEnv("PORT", "8000"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		LNbitsURL:        getEnv("LNBITS_URL", "http://localhost:5000"),
		LNbitsAPIKey:     os.Getenv("LNBITS_API_KEY"),
		AdminKey:         os.Getenv("ADMIN_KEY"),
		WalletAdminKey:   os.Getenv("WALLET_ADMIN_KEY"),
		WalletInvoiceKey: os.Getenv("WALLET_INVOICE_KEY"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         smtpPort,
		EmailUser:        os.Getenv("EMAIL_USER"),
		EmailPass:        os.Getenv("EMAIL_PASS"),
		StrictSlotCheck:  getEnvBool("STRICT_SLOT_CHECK", true),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
