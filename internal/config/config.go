package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// S3/Storage configuration
	S3Endpoint         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	UserDataBucket     string

	// Upload lifecycle configuration
	StagingPrefix        string
	DurablePrefix        string
	PresignExpirySeconds int
	ImageVariants        []string

	// Public URL conventions
	PublicBaseURL       string
	ImageGatewayBaseURL string

	// YDB configuration
	CFYDBEndpoint         string
	CFYDBDatabasePath     string
	CFYDBAutoCreateTables int

	// Telegram configuration
	TelegramBotToken    string
	TelegramAdminChatID string

	// JWT configuration
	JWTSecretKey string

	// Email/Postbox configuration
	SESEndpoint        string
	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string
	EmailFrom          string
	AppLoginURL        string

	// HTTP configuration
	HTTPPort string
}

func Load() *Config {
	s3Endpoint := getEnv("S3_ENDPOINT", "https://storage.yandexcloud.net")
	// An env var set to an empty string overrides the default; fall back
	// explicitly so the storage client does not get an empty endpoint.
	if s3Endpoint == "" {
		s3Endpoint = "https://storage.yandexcloud.net"
	}
	if !strings.HasPrefix(s3Endpoint, "http://") && !strings.HasPrefix(s3Endpoint, "https://") {
		s3Endpoint = "https://" + s3Endpoint
		log.Printf("WARN: S3_ENDPOINT was missing a protocol scheme. Prepending 'https://'. New endpoint: %s", s3Endpoint)
	}

	return &Config{
		// S3/Storage configuration
		S3Endpoint:         s3Endpoint,
		AWSAccessKeyID:     getEnv("CF_SA_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("CF_SA_KEY", ""),
		UserDataBucket:     getEnv("CF_OBJSTORE_BUCKET", "craftfolio-userdata"),

		// Upload lifecycle configuration
		StagingPrefix:        getEnv("CF_UPLOAD_STAGING_PREFIX", "mayfly"),
		DurablePrefix:        getEnv("CF_UPLOAD_DURABLE_PREFIX", "tortoise"),
		PresignExpirySeconds: getEnvInt("CF_UPLOAD_URL_EXPIRY_SECONDS", 14400, 60, 86400),
		ImageVariants:        getEnvList("CF_IMAGE_VARIANTS", "webp,thumb,150x150,600x600,1200x1200"),

		// Public URL conventions
		PublicBaseURL:       getEnv("CF_PUBLIC_BASE_URL", "https://cdn.craftfolio.app"),
		ImageGatewayBaseURL: getEnv("CF_IMAGE_GATEWAY_BASE_URL", "https://img.craftfolio.app/"),

		// YDB configuration
		CFYDBEndpoint:         getEnv("CF_YDB_ENDPOINT", ""),
		CFYDBDatabasePath:     getEnv("CF_YDB_DATABASE_PATH", ""),
		CFYDBAutoCreateTables: getEnvInt("CF_YDB_AUTO_CREATE_TABLES", 0, 0, 1),

		// Telegram configuration
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID: getEnv("TELEGRAM_CHAT_ID", ""),

		// JWT configuration
		JWTSecretKey: getEnv("CF_JWT_SECRET_KEY", ""),

		// Email/Postbox configuration
		SESEndpoint:        getEnv("CF_POSTBOX_ENDPOINT", ""),
		SESRegion:          getEnv("CF_POSTBOX_REGION", ""),
		SESAccessKeyID:     getEnv("CF_POSTBOX_ACCESS_KEY_ID", ""),
		SESSecretAccessKey: getEnv("CF_POSTBOX_SECRET_ACCESS_KEY", ""),
		EmailFrom:          getEnv("CF_EMAIL_FROM", ""),
		AppLoginURL:        getEnv("CF_APP_LOGIN_URL", "https://craftfolio.app/login"),

		// HTTP configuration
		HTTPPort: getEnv("CF_HTTP_PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback, min, max int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			if n < min {
				return min
			}
			if n > max {
				return max
			}
			return n
		}
		log.Printf("WARN: %s=%q is not an integer, using default %d", key, v, fallback)
	}

	if fallback < min {
		return min
	}
	if fallback > max {
		return max
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
