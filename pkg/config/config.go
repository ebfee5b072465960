package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	OAuthStateTTL time.Duration

	QBOClientID     string
	QBOClientSecret string
	QBORedirectURI  string
	QBOEnvironment  string
	QBOScopes       []string
	QBOMinorVersion string
	QBOTokenSkew    time.Duration
	QBOPageSize     int
	QBOChunkMonths  int
	QBOSyncClasses  bool
	DataStartDate   string
	DataEndDate     string
	IngestInterval  time.Duration

	AIProvider            string
	TransactionCategories []string
	CerebrasAPIKey        string
	CerebrasBaseURL       string
	CerebrasModel         string
	GeminiAPIKey          string
	GeminiModel           string

	LogLevel  string
	LogFormat string
}

const defaultCategories = "Income,COGS,Payroll,Rent,Utilities,Marketing,Travel,Software,Insurance,Repairs,Bank Fees,Taxes,Other"

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://qbo.db"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		OAuthStateTTL: getDuration("OAUTH_STATE_TTL", 10*time.Minute),

		QBOClientID:     getEnv("QBO_CLIENT_ID", ""),
		QBOClientSecret: getEnv("QBO_CLIENT_SECRET", ""),
		QBORedirectURI:  getEnv("QBO_REDIRECT_URI", "http://localhost:8080/api/auth/callback"),
		QBOEnvironment:  getEnv("QBO_ENV", "sandbox"),
		QBOScopes:       splitList(getEnv("QBO_SCOPES", "com.intuit.quickbooks.accounting")),
		QBOMinorVersion: getEnv("QBO_MINOR_VERSION", "70"),
		QBOTokenSkew:    getDuration("QBO_TOKEN_SKEW", 120*time.Second),
		QBOPageSize:     getInt("QBO_PAGE_SIZE", 1000),
		QBOChunkMonths:  getInt("QBO_CHUNK_MONTHS", 6),
		QBOSyncClasses:  getBool("QBO_SYNC_CLASSES", true),
		DataStartDate:   getEnv("DATA_START_DATE", "2023-01-01"),
		DataEndDate:     getEnv("DATA_END_DATE", "2026-01-31"),
		IngestInterval:  getDuration("INGEST_INTERVAL", 0),

		AIProvider:            getEnv("AI_PROVIDER", "auto"),
		TransactionCategories: splitList(getEnv("AI_TRANSACTION_CATEGORIES", defaultCategories)),
		CerebrasAPIKey:        getEnv("CEREBRAS_API_KEY", ""),
		CerebrasBaseURL:       getEnv("CEREBRAS_BASE_URL", "https://api.cerebras.ai/v1"),
		CerebrasModel:         getEnv("CEREBRAS_MODEL", "zai-glm-4.7"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

// QBOBaseURL returns the accounting API host for the configured environment.
func (c *Config) QBOBaseURL() string {
	if strings.EqualFold(c.QBOEnvironment, "production") {
		return "https://quickbooks.api.intuit.com"
	}
	return "https://sandbox-quickbooks.api.intuit.com"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
