package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string

	ServerPort int
	LogLevel   string
	LogFile    string

	DatabaseURL string

	JWTAccessSecret []byte
	AccessTTL       time.Duration

	AdminEmail    string
	AdminPassword string
	AdminBranch   string

	KafkaBrokers []string
	EventsTopic  string

	ESURL      string
	ESUser     string
	ESPassword string

	RedisAddr      string
	RedisPassword  string
	IdempotencyTTL time.Duration

	SMSGatewayURL   string
	SMSGatewayToken string
	SMSSenderID     string
	AdminAlertPhone string

	StepTimeout time.Duration
	ReminderAt  string
	Timezone    string

	CSRFEnabled bool
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "dp_pos"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   os.Getenv("LOG_LEVEL"),
		LogFile:    os.Getenv("LOG_FILE"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),
		AccessTTL:       EnvDurationDefault("ACCESS_TTL", 12*time.Hour),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminBranch:   EnvDefault("ADMIN_BRANCH", "DPHeadbranch"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		EventsTopic:  EnvDefault("EVENTS_TOPIC", "order_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		IdempotencyTTL: EnvDurationDefault("IDEMPOTENCY_TTL", 24*time.Hour),

		SMSGatewayURL:   os.Getenv("SMS_GATEWAY_URL"),
		SMSGatewayToken: os.Getenv("SMS_GATEWAY_TOKEN"),
		SMSSenderID:     EnvDefault("SMS_SENDER_ID", "DPCOM"),
		AdminAlertPhone: os.Getenv("ADMIN_ALERT_PHONE"),

		StepTimeout: EnvDurationDefault("STEP_TIMEOUT", 5*time.Second),
		ReminderAt:  EnvDefault("REMINDER_AT", "09:00"),
		Timezone:    EnvDefault("TZ_NAME", "Asia/Colombo"),

		CSRFEnabled: EnvBoolDefault("CSRF_ENABLED", true),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDurationDefault accepts Go duration strings ("5s", "12h").
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func EnvBoolDefault(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}
