package config

import (
	"encoding/json"
	"os"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/flagx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration, which accepts "1m" as well as integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	LogBackend                  string         `json:"log_backend"`
	LogLevel                    string         `json:"log_level"`
	TransactionalBootstrap      bool           `json:"transactional_bootstrap"`
	ViewCacheSize               int            `json:"view_cache_size"`
	CORSOrigins                 []string       `json:"cors_origins"`
	PreferencesBackend          string         `json:"preferences_backend"`
	MongoURI                    string         `json:"mongo_uri"`
	MongoDatabase               string         `json:"mongo_database"`
	ResendAPIKey                string         `json:"resend_api_key"`
	EmailFrom                   string         `json:"email_from"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// $TASKFLOW_CONFIG) onto config. Keys missing from the file keep their
// current value. An unreadable or invalid file panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFile()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.LogBackend = c.LogBackend
	config.LogLevel = c.LogLevel
	config.TransactionalBootstrap = c.TransactionalBootstrap
	config.ViewCacheSize = c.ViewCacheSize
	config.CORSOrigins = c.CORSOrigins
	config.PreferencesBackend = c.PreferencesBackend
	config.MongoURI = c.MongoURI
	config.MongoDatabase = c.MongoDatabase
	config.ResendAPIKey = c.ResendAPIKey
	config.EmailFrom = c.EmailFrom
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}

func toJson(config *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:            config.EndpointAddrHTTP,
		DatabaseDSN:                 config.DatabaseDSN,
		SecretKey:                   config.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: config.AccessTokenValidityDuration},
		LogBackend:                  config.LogBackend,
		LogLevel:                    config.LogLevel,
		TransactionalBootstrap:      config.TransactionalBootstrap,
		ViewCacheSize:               config.ViewCacheSize,
		CORSOrigins:                 config.CORSOrigins,
		PreferencesBackend:          config.PreferencesBackend,
		MongoURI:                    config.MongoURI,
		MongoDatabase:               config.MongoDatabase,
		ResendAPIKey:                config.ResendAPIKey,
		EmailFrom:                   config.EmailFrom,
		S3RootUser:                  config.S3RootUser,
		S3RootPassword:              config.S3RootPassword,
		S3Bucket:                    config.S3Bucket,
		S3Region:                    config.S3Region,
		S3BaseEndpoint:              config.S3BaseEndpoint,
	}
}
