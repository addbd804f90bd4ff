package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays values from environment variables. Variable names follow
// the deployment conventions of the hosting platform (PORT) and the
// frontend's OAuth setup (CLIENT_ID).
//
//	PORT               HTTP port; sets EndpointAddrHTTP to ":"+PORT
//	STORAGE            postgres | mongo | memory
//	DATABASE_DSN       PostgreSQL DSN
//	MONGO_URI          MongoDB URI; selects mongo storage unless STORAGE is set
//	MONGO_DATABASE     MongoDB database name
//	CLIENT_ID          Google OAuth client ID
//	SESSION_SECRET     HMAC secret for session tokens
//	REQUIRE_SESSION    true/false
//	CORS_ORIGINS       comma-separated origin allow-list
//	REQUEST_TIMEOUT    Go duration, e.g. "10s"
//	LOG_LEVEL          debug | info | warn | error
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
func parseEnv(config *Config) error {
	if v, ok := lookup("PORT"); ok {
		config.EndpointAddrHTTP = ":" + v
	}

	if v, ok := lookup("MONGO_URI"); ok {
		config.MongoURI = v
		if _, set := lookup("STORAGE"); !set {
			config.Storage = StorageMongo
		}
	}
	envString(&config.Storage, "STORAGE")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.MongoDatabase, "MONGO_DATABASE")
	envString(&config.GoogleClientID, "CLIENT_ID")
	envString(&config.SessionSecretKey, "SESSION_SECRET")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	if v, ok := lookup("REQUIRE_SESSION"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REQUIRE_SESSION: %w", err)
		}
		config.RequireSession = b
	}

	if v, ok := lookup("CORS_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}

	if v, ok := lookup("REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		config.RequestTimeout = d
	}

	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func envString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
