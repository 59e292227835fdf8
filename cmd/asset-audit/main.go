// Command asset-audit is a scheduled Lambda that reports image references in
// the site's records whose objects are missing from storage.
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/curingwithcare/care-site/internal/audit"
	"github.com/curingwithcare/care-site/internal/config"
	"github.com/curingwithcare/care-site/internal/content"
	"github.com/curingwithcare/care-site/internal/db"
	"github.com/curingwithcare/care-site/internal/storage"
)

type event struct {
	// LandingSection overrides the landing data row to check.
	LandingSection string `json:"landing_section"`
}

func handler(ctx context.Context, ev event) (audit.Report, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return audit.Report{}, err
	}
	if cfg.DatabaseURL == "" {
		return audit.Report{}, fmt.Errorf("DATABASE_URL or SECRETS_ARN must be set")
	}
	database, err := db.NewDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return audit.Report{}, err
	}
	defer database.Close()

	opts := storage.S3Options{
		Bucket:          cfg.Bucket,
		Region:          cfg.AWSRegion,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
	}
	client, err := storage.NewS3Client(ctx, opts)
	if err != nil {
		return audit.Report{}, err
	}

	section := ev.LandingSection
	if section == "" {
		copyText, err := content.Load(cfg.ContentPath)
		if err != nil {
			return audit.Report{}, err
		}
		section = copyText.Landing.Section
	}
	a := &audit.Auditor{
		Records:        db.NewRecords(database),
		Head:           client,
		Lister:         &storage.S3Lister{Client: client, Bucket: cfg.Bucket},
		Bucket:         cfg.Bucket,
		LandingSection: section,
		Concurrency:    8,
	}
	return a.Run(ctx)
}

func main() { lambda.Start(handler) }
