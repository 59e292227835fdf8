// Package config reads service settings from the environment, an optional .env
// file and, for the database DSN, AWS Secrets Manager.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/joho/godotenv"
)

const (
	defaultRegion       = "eu-central-1"
	defaultBucket       = "images"
	defaultFeaturedCity = "Pittsburgh"
	defaultCacheTTL     = 5 * time.Minute
)

// Config holds everything the site needs at startup.
type Config struct {
	Port    string
	GinMode string

	DatabaseURL string
	SecretsARN  string

	AWSRegion string

	// SupabaseURL is the public project URL used to build object URLs.
	SupabaseURL   string
	Bucket        string
	S3Endpoint    string
	S3AccessKeyID string
	S3SecretKey   string

	ListingCacheTTL time.Duration
	FeaturedCity    string
	JWTSecret       string
	FixturesPath    string
	ContentPath     string
	EditorOrigin    string
}

// LoadDotEnv loads a .env file if present. It reports whether one was found.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       os.Getenv("GIN_MODE"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SecretsARN:    os.Getenv("SECRETS_ARN"),
		AWSRegion:     getEnv("AWS_REGION", getEnv("AWS_DEFAULT_REGION", defaultRegion)),
		SupabaseURL:   os.Getenv("SUPABASE_URL"),
		Bucket:        getEnv("STORAGE_BUCKET", defaultBucket),
		S3Endpoint:    os.Getenv("STORAGE_S3_ENDPOINT"),
		S3AccessKeyID: os.Getenv("STORAGE_ACCESS_KEY_ID"),
		S3SecretKey:   os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
		FeaturedCity:  getEnv("FEATURED_BRANCH_CITY", defaultFeaturedCity),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		FixturesPath:  os.Getenv("FIXTURES_PATH"),
		ContentPath:   os.Getenv("CONTENT_PATH"),
		EditorOrigin:  os.Getenv("EDITOR_ORIGIN"),
	}
	cfg.ListingCacheTTL = getDuration("LISTING_CACHE_TTL", defaultCacheTTL)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = composeDSN()
	}
	if cfg.SupabaseURL == "" {
		cfg.SupabaseURL = os.Getenv("NEXT_PUBLIC_SUPABASE_URL")
	}
	return cfg
}

// Load reads the environment and, when SECRETS_ARN is set and no DSN was
// configured, resolves DATABASE_URL from Secrets Manager.
func Load(ctx context.Context) (Config, error) {
	cfg := FromEnv()
	if cfg.DatabaseURL != "" || cfg.SecretsARN == "" {
		return cfg, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return cfg, fmt.Errorf("load aws config: %w", err)
	}
	dsn, err := DatabaseURLFromSecret(ctx, secretsmanager.NewFromConfig(awsCfg), cfg.SecretsARN)
	if err != nil {
		return cfg, err
	}
	cfg.DatabaseURL = dsn
	return cfg, nil
}

// SecretGetter is the subset of the Secrets Manager client used here.
type SecretGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// DatabaseURLFromSecret reads a JSON secret of the form {"DATABASE_URL": "..."}.
func DatabaseURLFromSecret(ctx context.Context, sm SecretGetter, secretArn string) (string, error) {
	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(secretArn)})
	if err != nil {
		return "", fmt.Errorf("get secret: %w", err)
	}
	var payload struct {
		DatabaseURL string `json:"DATABASE_URL"`
	}
	if err := json.Unmarshal([]byte(aws.ToString(out.SecretString)), &payload); err != nil {
		return "", fmt.Errorf("parse secret: %w", err)
	}
	if payload.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL missing in secret")
	}
	return payload.DatabaseURL, nil
}

// composeDSN builds a postgres URL from discrete DB_* variables (Terraform style).
func composeDSN() string {
	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	name := os.Getenv("DB_NAME")
	pwd := os.Getenv("DB_PASSWORD")
	if host == "" || user == "" || name == "" {
		return ""
	}
	port := getEnv("DB_PORT", "5432")
	ssl := getEnv("DB_SSLMODE", "require")
	userInfo := url.User(user)
	if pwd != "" {
		userInfo = url.UserPassword(user, pwd)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: "sslmode=" + url.QueryEscape(ssl),
	}
	return u.String()
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getDuration accepts Go durations ("90s") or a bare number of seconds.
func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
