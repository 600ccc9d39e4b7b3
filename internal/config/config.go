package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	RealtimeBridgeRedis = "redis"
	RealtimeBridgeLocal = "local"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
	MemorySeedPath string `env:"MEMORY_SEED_PATH"`
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	GinMode        string `env:"GIN_MODE" envDefault:"release"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Realtime Config
	RealtimeBridge     string   `env:"REALTIME_BRIDGE" envDefault:"redis"`
	RealtimeChannel    string   `env:"REALTIME_CHANNEL" envDefault:"crisis:events"`
	RealtimeSendBuffer int      `env:"REALTIME_SEND_BUFFER" envDefault:"64"`
	RealtimeRoomChecks bool     `env:"REALTIME_ROOM_CHECKS" envDefault:"true"`
	WSAllowedOrigins   []string `env:"WS_ALLOWED_ORIGINS"`

	// Domain Config
	IncidentCacheTTL     time.Duration `env:"INCIDENT_CACHE_TTL" envDefault:"5m"`
	NearbyDefaultRadius  float64       `env:"NEARBY_DEFAULT_RADIUS_KM" envDefault:"10"`
	ReconcileInterval    time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1m"`
	NotifyEnqueueTimeout time.Duration `env:"NOTIFY_ENQUEUE_TIMEOUT" envDefault:"2s"`
	NotifyMaxAttempts    int           `env:"NOTIFY_MAX_ATTEMPTS" envDefault:"1"`
	NotifyBaseDelay      time.Duration `env:"NOTIFY_BASE_DELAY" envDefault:"1s"`
	NotifyRatePerSecond  float64       `env:"NOTIFY_RATE_PER_SECOND" envDefault:"5"`

	// Email Config
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	// SMS Config
	TwilioAccountSID  string   `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string   `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber  string   `env:"TWILIO_FROM_NUMBER"`
	TwilioAPIURL      string   `env:"TWILIO_API_URL" envDefault:"https://api.twilio.com/2010-04-01"`
	AdminPhoneNumbers []string `env:"ADMIN_PHONE_NUMBERS"`
	SMSReporterID     string   `env:"SMS_REPORTER_ID"`
	// Проверка X-Twilio-Signature на входящем вебхуке; отключается только для локальной отладки
	TwilioValidateSignature bool `env:"TWILIO_VALIDATE_SIGNATURE" envDefault:"true"`
	// Публичный адрес вебхука, которым Twilio подписывает запрос; пусто - собирается из запроса
	TwilioWebhookURL string `env:"TWILIO_WEBHOOK_URL"`

	// Webhook Config
	WebhookURL     string        `env:"WEBHOOK_URL"`
	WebhookSecret  string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		StorageDriver:           getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		MigrationsPath:          getEnv("MIGRATIONS_PATH", "file://migrations"),
		MemorySeedPath:          os.Getenv("MEMORY_SEED_PATH"),
		HTTPPort:                getEnv("HTTP_PORT", "8080"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		GinMode:                 getEnv("GIN_MODE", "release"),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:               os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getEnvAsInt("REDIS_DB", 0),
		RealtimeBridge:          getEnv("REALTIME_BRIDGE", RealtimeBridgeRedis),
		RealtimeChannel:         getEnv("REALTIME_CHANNEL", "crisis:events"),
		RealtimeSendBuffer:      getEnvAsInt("REALTIME_SEND_BUFFER", 64),
		RealtimeRoomChecks:      getEnvAsBool("REALTIME_ROOM_CHECKS", true),
		WSAllowedOrigins:        getEnvAsList("WS_ALLOWED_ORIGINS"),
		IncidentCacheTTL:        getEnvAsDuration("INCIDENT_CACHE_TTL", 5*time.Minute),
		NearbyDefaultRadius:     getEnvAsFloat("NEARBY_DEFAULT_RADIUS_KM", 10),
		ReconcileInterval:       getEnvAsDuration("RECONCILE_INTERVAL", time.Minute),
		NotifyEnqueueTimeout:    getEnvAsDuration("NOTIFY_ENQUEUE_TIMEOUT", 2*time.Second),
		NotifyMaxAttempts:       getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 1),
		NotifyBaseDelay:         getEnvAsDuration("NOTIFY_BASE_DELAY", time.Second),
		NotifyRatePerSecond:     getEnvAsFloat("NOTIFY_RATE_PER_SECOND", 5),
		SMTPHost:                os.Getenv("SMTP_HOST"),
		SMTPPort:                getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:                os.Getenv("SMTP_USER"),
		SMTPPassword:            os.Getenv("SMTP_PASSWORD"),
		MailFrom:                os.Getenv("MAIL_FROM"),
		TwilioAccountSID:        os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:         os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:        os.Getenv("TWILIO_FROM_NUMBER"),
		TwilioAPIURL:            getEnv("TWILIO_API_URL", "https://api.twilio.com/2010-04-01"),
		AdminPhoneNumbers:       getEnvAsList("ADMIN_PHONE_NUMBERS"),
		SMSReporterID:           os.Getenv("SMS_REPORTER_ID"),
		TwilioValidateSignature: getEnvAsBool("TWILIO_VALIDATE_SIGNATURE", true),
		TwilioWebhookURL:        os.Getenv("TWILIO_WEBHOOK_URL"),
		WebhookURL:              os.Getenv("WEBHOOK_URL"),
		WebhookSecret:           os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:          getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		APIKeys:                 getEnvAsList("API_KEYS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет взаимозависимые настройки
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.RealtimeBridge != RealtimeBridgeRedis && c.RealtimeBridge != RealtimeBridgeLocal {
		return fmt.Errorf("unknown REALTIME_BRIDGE %q", c.RealtimeBridge)
	}
	if c.RealtimeSendBuffer < 1 {
		return fmt.Errorf("REALTIME_SEND_BUFFER must be positive")
	}
	if c.NotifyMaxAttempts < 1 {
		c.NotifyMaxAttempts = 1
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
