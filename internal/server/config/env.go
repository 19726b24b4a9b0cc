package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// dotenvFiles are loaded (if present) before reading the environment.
// Variables already set in the process environment win.
var dotenvFiles = []string{".env"}

// parseEnv overlays TASKFLOW_* environment variables onto config.
// RESEND_API_KEY is read under its conventional name.
func parseEnv(config *Config) {
	for _, f := range dotenvFiles {
		// a missing .env is the normal production case
		_ = godotenv.Load(f)
	}

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	str("TASKFLOW_HTTP_ADDR", &config.EndpointAddrHTTP)
	str("TASKFLOW_DATABASE_DSN", &config.DatabaseDSN)
	str("TASKFLOW_SECRET_KEY", &config.SecretKey)
	str("TASKFLOW_LOG_BACKEND", &config.LogBackend)
	str("TASKFLOW_LOG_LEVEL", &config.LogLevel)
	str("TASKFLOW_PREFERENCES_BACKEND", &config.PreferencesBackend)
	str("TASKFLOW_MONGO_URI", &config.MongoURI)
	str("TASKFLOW_MONGO_DATABASE", &config.MongoDatabase)
	str("RESEND_API_KEY", &config.ResendAPIKey)
	str("TASKFLOW_EMAIL_FROM", &config.EmailFrom)
	str("TASKFLOW_S3_USER", &config.S3RootUser)
	str("TASKFLOW_S3_PASSWORD", &config.S3RootPassword)
	str("TASKFLOW_S3_BUCKET", &config.S3Bucket)
	str("TASKFLOW_S3_REGION", &config.S3Region)
	str("TASKFLOW_S3_ENDPOINT", &config.S3BaseEndpoint)

	if v, ok := os.LookupEnv("TASKFLOW_ACCESS_TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("TASKFLOW_ACCESS_TOKEN_TTL: %w", err))
		}
		config.AccessTokenValidityDuration = d
	}

	if v, ok := os.LookupEnv("TASKFLOW_TRANSACTIONAL_BOOTSTRAP"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("TASKFLOW_TRANSACTIONAL_BOOTSTRAP: %w", err))
		}
		config.TransactionalBootstrap = b
	}

	if v, ok := os.LookupEnv("TASKFLOW_VIEW_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("TASKFLOW_VIEW_CACHE_SIZE: %w", err))
		}
		config.ViewCacheSize = n
	}

	if v, ok := os.LookupEnv("TASKFLOW_CORS_ORIGINS"); ok {
		config.CORSOrigins = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
