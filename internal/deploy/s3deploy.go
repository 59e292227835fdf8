package deploy

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/curingwithcare/care-site/internal/logging"
)

// Uploader is the subset of manager.Uploader used by Deploy.
type Uploader interface {
	Upload(ctx context.Context, in *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Invalidator is the subset of the CloudFront client used by Deploy.
type Invalidator interface {
	CreateInvalidation(ctx context.Context, in *cloudfront.CreateInvalidationInput, optFns ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error)
}

// Options configures a deployment.
type Options struct {
	Dir    string
	Bucket string
	// Prefix is prepended to every object key.
	Prefix string
	// DistributionID, when set, gets a "/*" invalidation after upload.
	DistributionID string
}

// Result summarises a deployment.
type Result struct {
	Uploaded       []string
	InvalidationID string
}

// NewClients builds the uploader and CloudFront client from the default AWS
// credential chain.
func NewClients(ctx context.Context, region string) (Uploader, Invalidator, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return manager.NewUploader(s3.NewFromConfig(cfg)), cloudfront.NewFromConfig(cfg), nil
}

// Deploy uploads every file under opts.Dir to the bucket and invalidates
// the CloudFront distribution if one is given.
func Deploy(ctx context.Context, up Uploader, cf Invalidator, opts Options) (Result, error) {
	var res Result
	if opts.Bucket == "" {
		return res, fmt.Errorf("deploy: bucket is required")
	}
	err := filepath.Walk(opts.Dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(opts.Dir, p)
		if err != nil {
			return err
		}
		key := path.Join(strings.Trim(opts.Prefix, "/"), filepath.ToSlash(rel))
		if err := uploadFile(ctx, up, opts.Bucket, key, p); err != nil {
			return err
		}
		res.Uploaded = append(res.Uploaded, key)
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("deployment failed: %w", err)
	}
	logging.LogKV("info", "upload complete", map[string]interface{}{"bucket": opts.Bucket, "objects": len(res.Uploaded)})

	if opts.DistributionID == "" || cf == nil {
		return res, nil
	}
	out, err := cf.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(opts.DistributionID),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(fmt.Sprintf("care-site-%d", time.Now().UnixNano())),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(1),
				Items:    []string{"/*"},
			},
		},
	})
	if err != nil {
		return res, fmt.Errorf("create invalidation: %w", err)
	}
	if out.Invalidation != nil {
		res.InvalidationID = aws.ToString(out.Invalidation.Id)
	}
	logging.LogKV("info", "cloudfront invalidation created", map[string]interface{}{
		"distribution": opts.DistributionID,
		"invalidation": res.InvalidationID,
	})
	return res, nil
}

func uploadFile(ctx context.Context, up Uploader, bucket, key, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", p, err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(p))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = up.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         f,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	return nil
}

// cacheControl keeps HTML fresh and lets assets be cached for a day.
func cacheControl(key string) string {
	if strings.HasSuffix(key, ".html") {
		return "no-cache"
	}
	return "public, max-age=86400"
}
