// Command sitegen exports the site as static HTML and deploys it to S3.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/curingwithcare/care-site/internal/config"
	"github.com/curingwithcare/care-site/internal/content"
	"github.com/curingwithcare/care-site/internal/db"
	"github.com/curingwithcare/care-site/internal/deploy"
	"github.com/curingwithcare/care-site/internal/logging"
	"github.com/curingwithcare/care-site/internal/site"
	"github.com/curingwithcare/care-site/internal/storage"
	"github.com/curingwithcare/care-site/internal/web"
	"github.com/spf13/cobra"
)

var (
	outDir         string
	bucket         string
	prefix         string
	distributionID string
	timeout        time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "sitegen",
	Short:         "Build and publish the static CARE site",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render every page into the output directory",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Upload the output directory to S3 and invalidate CloudFront",
	Args:  cobra.NoArgs,
	RunE:  runDeploy,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "public", "output directory")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")

	deployCmd.Flags().StringVar(&bucket, "bucket", os.Getenv("SITE_BUCKET"), "destination S3 bucket")
	deployCmd.Flags().StringVar(&prefix, "prefix", "", "object key prefix")
	deployCmd.Flags().StringVar(&distributionID, "distribution", os.Getenv("CLOUDFRONT_DISTRIBUTION_ID"), "CloudFront distribution to invalidate")
	deployCmd.Flags().Bool("build", true, "run build before uploading")

	rootCmd.AddCommand(buildCmd, deployCmd)
}

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	s, closeFn, err := newSite(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	r, err := web.NewRenderer()
	if err != nil {
		return err
	}
	report, err := deploy.Build(ctx, s, r, outDir)
	if err != nil {
		return err
	}
	fmt.Printf("Built %d pages and %d assets into %s\n", len(report.Pages), len(report.Assets), outDir)
	return nil
}

func runDeploy(cmd *cobra.Command, args []string) error {
	if build, _ := cmd.Flags().GetBool("build"); build {
		if err := runBuild(cmd, args); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg := config.FromEnv()
	up, cf, err := deploy.NewClients(ctx, cfg.AWSRegion)
	if err != nil {
		return err
	}
	res, err := deploy.Deploy(ctx, up, cf, deploy.Options{
		Dir:            outDir,
		Bucket:         bucket,
		Prefix:         prefix,
		DistributionID: distributionID,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded %d objects to s3://%s\n", len(res.Uploaded), bucket)
	if res.InvalidationID != "" {
		fmt.Printf("CloudFront invalidation %s created\n", res.InvalidationID)
	}
	return nil
}

// newSite wires the page loaders the same way the server does. Without a
// database the fixture data is exported.
func newSite(ctx context.Context, cfg config.Config) (*site.Site, func(), error) {
	var (
		source  db.Source
		closeFn = func() {}
	)
	if cfg.DatabaseURL != "" {
		database, err := db.NewDatabaseWithRetry(ctx, cfg.DatabaseURL, 3, time.Second)
		if err != nil {
			return nil, nil, err
		}
		source, closeFn = database, database.Close
	} else {
		store, err := db.LoadFixtureStore(cfg.FixturesPath)
		if err != nil {
			return nil, nil, err
		}
		source = store
	}

	lister, err := storage.NewS3Lister(ctx, storage.S3Options{
		Bucket:          cfg.Bucket,
		Region:          cfg.AWSRegion,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	copyText, err := content.Load(cfg.ContentPath)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return site.New(site.Options{
		Records:      db.NewRecords(source),
		Resolver:     storage.NewResolver(cfg.SupabaseURL, cfg.Bucket),
		Images:       storage.NewCachedLister(lister, cfg.ListingCacheTTL),
		Content:      copyText,
		FeaturedCity: cfg.FeaturedCity,
	}), closeFn, nil
}
