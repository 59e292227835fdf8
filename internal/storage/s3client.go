package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Lister lists the entries directly under a folder.
type Lister interface {
	ListFolder(ctx context.Context, prefix string) ([]string, error)
}

// TreeLister lists a whole subtree in one pass, grouped by first-level folder.
type TreeLister interface {
	ListTree(ctx context.Context, parent string) (map[string][]string, error)
}

// S3Options configures the S3-compatible storage endpoint.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Lister reads folder listings from an S3-compatible bucket.
type S3Lister struct {
	Client s3.ListObjectsV2APIClient
	Bucket string
}

// NewS3Client builds an S3 client for opts. With an Endpoint set (Supabase
// Storage S3 gateway) path-style addressing is used; static keys replace the
// default AWS credential chain when both are given.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Lister builds a lister over opts.Bucket. Without a bucket the lister
// is disabled and every listing fails with a ListError.
func NewS3Lister(ctx context.Context, opts S3Options) (*S3Lister, error) {
	if opts.Bucket == "" {
		return &S3Lister{}, nil
	}
	client, err := NewS3Client(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &S3Lister{Client: client, Bucket: opts.Bucket}, nil
}

// Enabled reports whether a bucket and client are configured.
func (l *S3Lister) Enabled() bool { return l != nil && l.Client != nil && l.Bucket != "" }

// ListFolder returns object names directly under prefix sorted ascending.
// Sub-folders are returned as names ending in "/". An empty prefix returns
// nothing without issuing a request.
func (l *S3Lister) ListFolder(ctx context.Context, prefix string) ([]string, error) {
	folder := strings.Trim(prefix, "/")
	if folder == "" {
		return []string{}, nil
	}
	if !l.Enabled() {
		return nil, &ListError{Prefix: folder, Err: fmt.Errorf("s3 lister not configured")}
	}
	p := folder + "/"

	names := []string{}
	paginator := s3.NewListObjectsV2Paginator(l.Client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(l.Bucket),
		Prefix:    aws.String(p),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &ListError{Prefix: folder, Err: err}
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimPrefix(aws.ToString(cp.Prefix), p)
			if name != "" {
				names = append(names, name)
			}
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), p)
			if name != "" {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListTree lists every object under parent and groups entries by the first
// folder level below it. Deeper folders become "name/" markers.
func (l *S3Lister) ListTree(ctx context.Context, parent string) (map[string][]string, error) {
	root := strings.Trim(parent, "/")
	if root == "" {
		return map[string][]string{}, nil
	}
	if !l.Enabled() {
		return nil, &ListError{Prefix: root, Err: fmt.Errorf("s3 lister not configured")}
	}
	p := root + "/"

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(l.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.Bucket),
		Prefix: aws.String(p),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &ListError{Prefix: root, Err: err}
		}
		for _, obj := range page.Contents {
			keys = append(keys, strings.TrimPrefix(aws.ToString(obj.Key), p))
		}
	}
	return groupTree(root, keys), nil
}

// groupTree partitions keys relative to root into per-folder listings keyed
// by the full folder path.
func groupTree(root string, keys []string) map[string][]string {
	out := map[string][]string{}
	seen := map[string]map[string]bool{}
	add := func(folder, name string) {
		if seen[folder] == nil {
			seen[folder] = map[string]bool{}
		}
		if name == "" || seen[folder][name] {
			return
		}
		seen[folder][name] = true
		out[folder] = append(out[folder], name)
	}
	for _, k := range keys {
		parts := strings.SplitN(k, "/", 3)
		if len(parts) < 2 {
			// object directly under root, not inside a child folder
			continue
		}
		folder := root + "/" + parts[0]
		if len(parts) == 2 {
			add(folder, parts[1])
			continue
		}
		add(folder, parts[1]+"/")
	}
	for f := range out {
		sort.Strings(out[f])
	}
	return out
}
