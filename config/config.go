package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port      string
	JWTSecret string
	LogLevel  string

	DocstoreDriver    string
	MongoURI          string
	MongoDatabase     string
	FirestoreProject  string
	WatchPollInterval time.Duration

	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int

	APIBaseURL           string
	FunctionsURL         string
	SendCustomReceipt    bool
	GeoIPURL             string
	CountryDetectTimeout time.Duration
	DefaultCountry       string

	SupportUserID        string
	ReceiptPruneSchedule string
	ContactRatePerMinute int
}

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Error loading .env file")
	}
}

// Load builds a Config from the process environment. Call LoadEnv first to pick up .env.
func Load() Config {
	return Config{
		Port:      GetEnv("PORT", "3000"),
		JWTSecret: GetEnv("JWT_SECRET", ""),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),

		DocstoreDriver:    strings.ToLower(GetEnv("DOCSTORE_DRIVER", "mongo")),
		MongoURI:          GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:     GetEnv("MONGODB_DATABASE", "localmart"),
		FirestoreProject:  GetEnv("FIRESTORE_PROJECT_ID", ""),
		WatchPollInterval: GetEnvDuration("WATCH_POLL_INTERVAL", 5*time.Second),

		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisUsername: GetEnv("REDIS_USERNAME", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("REDIS_DB", 0),

		APIBaseURL:           strings.TrimRight(GetEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		FunctionsURL:         strings.TrimRight(GetEnv("FIREBASE_FUNCTIONS_URL", ""), "/"),
		SendCustomReceipt:    GetEnvBool("SEND_CUSTOM_RECEIPT_EMAIL", false),
		GeoIPURL:             strings.TrimRight(GetEnv("GEOIP_URL", "https://ipapi.co"), "/"),
		CountryDetectTimeout: GetEnvDuration("COUNTRY_DETECT_TIMEOUT", 3*time.Second),
		DefaultCountry:       strings.ToUpper(GetEnv("DEFAULT_COUNTRY", "GB")),

		SupportUserID:        GetEnv("SUPPORT_USER_ID", "support"),
		ReceiptPruneSchedule: GetEnv("RECEIPT_PRUNE_SCHEDULE", "@daily"),
		ContactRatePerMinute: GetEnvInt("CONTACT_RATE_PER_MINUTE", 5),
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvInt parses an integer variable, returning fallback when unset or malformed.
func GetEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GetEnvDuration accepts Go duration strings ("3s") or plain milliseconds ("3000").
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func GetEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
