package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/flagx"
)

var valueFlags = []string{
	"-a", "-d", "-s", "-t",
	"-log-backend", "-log-level", "-cache-size", "-cors",
	"-prefs-backend", "-mongo-uri", "-mongo-db", "-resend-key", "-email-from",
	"-u", "-p", "-b", "-g", "-e",
}

var boolFlags = []string{"-tx"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string              HTTP bind address (e.g., ":8080")
//	-d string              PostgreSQL DSN
//	-s string              JWT HMAC secret key
//	-t int                 access token validity, minutes
//	-log-backend string    slog | zap
//	-log-level string      debug | info | warn | error
//	-tx                    transactional bootstrap
//	-cache-size int        dashboard view cache entries
//	-cors string           comma-separated allowed origins
//	-prefs-backend string  postgres | mongo
//	-mongo-uri string      MongoDB URI
//	-mongo-db string       MongoDB database
//	-resend-key string     Resend API key
//	-email-from string     welcome e-mail sender
//	-u / -p string         S3 user / password
//	-b / -g / -e string    S3 bucket / region / base endpoint
//
// Only these flags are taken from os.Args (see flagx.Filter), so the CLI's
// own flags do not collide. Token validity is given in minutes.
func parseFlags(config *Config) {
	args := flagx.Filter(os.Args[1:], flagx.Spec{Value: valueFlags, Bool: boolFlags})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.LogBackend, "log-backend", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.BoolVar(&config.TransactionalBootstrap, "tx", config.TransactionalBootstrap, "run bootstrap in a single transaction")
	fs.IntVar(&config.ViewCacheSize, "cache-size", config.ViewCacheSize, "dashboard view cache size")

	cors := fs.String("cors", strings.Join(config.CORSOrigins, ","), "comma-separated CORS origins")

	fs.StringVar(&config.PreferencesBackend, "prefs-backend", config.PreferencesBackend, "preferences backend (postgres|mongo)")
	fs.StringVar(&config.MongoURI, "mongo-uri", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "mongo-db", config.MongoDatabase, "MongoDB database")
	fs.StringVar(&config.ResendAPIKey, "resend-key", config.ResendAPIKey, "Resend API key")
	fs.StringVar(&config.EmailFrom, "email-from", config.EmailFrom, "welcome e-mail sender")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.CORSOrigins = splitList(*cors)
}
