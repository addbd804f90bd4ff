package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/festreg/internal/flagx"
)

var knownFlags = []string{
	"-a", "-grpc", "-storage", "-d", "-mongo-uri", "-mongo-db", "-client-id",
	"-k", "-t", "-o", "-l",
	"-s3-user", "-s3-password", "-s3-bucket", "-s3-region", "-s3-endpoint",
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string            HTTP bind address (e.g. ":3000")
//	-grpc string         gRPC health bind address; empty disables it
//	-storage string      postgres | mongo | memory
//	-d string            PostgreSQL DSN
//	-mongo-uri string    MongoDB URI
//	-mongo-db string     MongoDB database
//	-client-id string    Google OAuth client ID
//	-k string            session token HMAC secret
//	-t int               session token validity, minutes
//	-o string            comma-separated CORS origins
//	-l string            log level
//	-s3-user, -s3-password, -s3-bucket, -s3-region, -s3-endpoint
//
// args is filtered with flagx.FilterArgs first so flags owned by other
// components (the cobra CLI, the test runner) do not collide.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("festreg", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.Storage, "storage", config.Storage, "storage backend: postgres, mongo or memory")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "mongo-uri", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "mongo-db", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.GoogleClientID, "client-id", config.GoogleClientID, "Google OAuth client ID")
	fs.StringVar(&config.SessionSecretKey, "k", config.SessionSecretKey, "session secret key")

	sessionValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	origins := fs.String("o", "", "comma-separated CORS origins")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "s3-user", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "s3-password", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionValidity) * time.Minute
	if *origins != "" {
		config.AllowedOrigins = splitList(*origins)
	}

	return nil
}
