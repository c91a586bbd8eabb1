package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr  string
	PublicURL string // base for generated embed URLs

	DBDriver string
	DBDSN    string

	// EmbedItemCap bounds payloads before encoding; URL length limits in
	// browsers and messaging apps are finite.
	EmbedItemCap int

	SessionTTLMinutes int

	AuthSecret    string
	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string
}

// FromEnv loads configuration, honoring a local .env file when present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		PublicURL:         strings.TrimSuffix(envOr("PUBLIC_URL", "http://localhost:8080"), "/"),
		DBDriver:          envOr("DB_DRIVER", "sqlite"),
		DBDSN:             envOr("DB_DSN", ""),
		EmbedItemCap:      envInt("EMBED_ITEM_CAP", 24),
		SessionTTLMinutes: envInt("SESSION_TTL_MINUTES", 120),
		AuthSecret:        envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:         envOr("ADMIN_USER", "admin"),
		// default is bcrypt("password"), dev only
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
