package deploy

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/curingwithcare/care-site/internal/db"
	"github.com/curingwithcare/care-site/internal/site"
	"github.com/curingwithcare/care-site/internal/storage"
	"github.com/curingwithcare/care-site/internal/web"
	"github.com/google/go-cmp/cmp"
)

type emptyFolders struct{}

func (emptyFolders) ListFolders(ctx context.Context, prefixes []string) map[string]storage.Listing {
	out := map[string]storage.Listing{}
	for _, p := range prefixes {
		out[p] = storage.Listing{Names: []string{}}
	}
	return out
}

func newSite(t *testing.T) (*site.Site, *db.FixtureStore) {
	t.Helper()
	store, err := db.LoadFixtureStore("")
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	return site.New(site.Options{
		Records:      db.NewRecords(store),
		Resolver:     storage.NewResolver("https://project.supabase.co", "images"),
		Images:       emptyFolders{},
		FeaturedCity: "Pittsburgh",
	}), store
}

func TestBuild(t *testing.T) {
	s, _ := newSite(t)
	r, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	out := t.TempDir()
	report, err := Build(context.Background(), s, r, out)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, want := range []string{"index.html", "branches/index.html", "branches/pittsburgh/index.html", "events/index.html", "team/index.html", "research-competition/index.html", "404.html"} {
		if _, err := os.Stat(filepath.Join(out, want)); err != nil {
			t.Fatalf("missing %s: %v", want, err)
		}
	}
	// 7 fixed pages, one per branch and one events tab per branch
	if len(report.Pages) != 7+5+5 {
		t.Fatalf("expected 17 pages, got %d", len(report.Pages))
	}
	tab, err := os.ReadFile(filepath.Join(out, "events", "4", "index.html"))
	if err != nil {
		t.Fatalf("events tab not exported: %v", err)
	}
	if !strings.Contains(string(tab), `href="/events/4/" class="active"`) {
		t.Fatalf("exported tab should mark itself active")
	}
	all, err := os.ReadFile(filepath.Join(out, "events", "index.html"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(all), "/events?branch=") || !strings.Contains(string(all), `href="/events/5/"`) {
		t.Fatalf("exported tabs must link to tab directories")
	}
	if _, err := os.Stat(filepath.Join(out, "branch-placeholder.png")); err != nil {
		t.Fatalf("placeholder not copied to root: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(out, "branches", "pittsburgh", "index.html"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "Daniel Okafor") {
		t.Fatalf("branch page missing directors")
	}
}

func TestBuild_FailsOnSectionError(t *testing.T) {
	s, store := newSite(t)
	store.Fail(db.CollectionEvents, errors.New("down"))
	r, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	if _, err := Build(context.Background(), s, r, t.TempDir()); err == nil {
		t.Fatalf("expected build to fail when events cannot load")
	}
}

func TestBuild_FailsOnTeamSectionError(t *testing.T) {
	s, store := newSite(t)
	store.Fail(db.CollectionTeamMembers, errors.New("down"))
	r, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	out := t.TempDir()
	if _, err := Build(context.Background(), s, r, out); err == nil {
		t.Fatalf("expected build to fail when a team section cannot load")
	}
	if _, err := os.Stat(filepath.Join(out, "team", "index.html")); err == nil {
		t.Fatalf("failed team page must not be written")
	}
}

type fakeUploader struct {
	mu   sync.Mutex
	puts map[string]string
	fail string
}

func (f *fakeUploader) Upload(ctx context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.fail {
		return nil, errors.New("access denied")
	}
	if _, err := io.ReadAll(in.Body); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts[key] = aws.ToString(in.ContentType) + "|" + aws.ToString(in.CacheControl)
	return &manager.UploadOutput{Key: in.Key}, nil
}

type fakeCloudFront struct {
	inputs []*cloudfront.CreateInvalidationInput
}

func (f *fakeCloudFront) CreateInvalidation(ctx context.Context, in *cloudfront.CreateInvalidationInput, _ ...func(*cloudfront.Options)) (*cloudfront.CreateInvalidationOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudfront.CreateInvalidationOutput{Invalidation: &cftypes.Invalidation{Id: aws.String("INV123")}}, nil
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := writeFile(filepath.Join(dir, name), []byte(body)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestDeploy(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"index.html":            "<html></html>",
		"static/site.css":       "body{}",
		"branches/x/index.html": "<html></html>",
	})
	up := &fakeUploader{puts: map[string]string{}}
	cf := &fakeCloudFront{}

	res, err := Deploy(context.Background(), up, cf, Options{Dir: dir, Bucket: "site", Prefix: "/www/", DistributionID: "E1"})
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}
	keys := append([]string(nil), res.Uploaded...)
	sort.Strings(keys)
	want := []string{"www/branches/x/index.html", "www/index.html", "www/static/site.css"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got := up.puts["www/index.html"]; got != "text/html; charset=utf-8|no-cache" {
		t.Fatalf("unexpected html headers %q", got)
	}
	if got := up.puts["www/static/site.css"]; !strings.HasPrefix(got, "text/css") || !strings.HasSuffix(got, "max-age=86400") {
		t.Fatalf("unexpected css headers %q", got)
	}
	if res.InvalidationID != "INV123" || len(cf.inputs) != 1 {
		t.Fatalf("expected one invalidation, got %+v", cf.inputs)
	}
	if items := cf.inputs[0].InvalidationBatch.Paths.Items; len(items) != 1 || items[0] != "/*" {
		t.Fatalf("unexpected invalidation paths %v", items)
	}
}

func TestDeploy_Errors(t *testing.T) {
	dir := writeTree(t, map[string]string{"index.html": "x"})
	if _, err := Deploy(context.Background(), &fakeUploader{puts: map[string]string{}}, nil, Options{Dir: dir}); err == nil {
		t.Fatalf("expected error without bucket")
	}
	up := &fakeUploader{puts: map[string]string{}, fail: "index.html"}
	cf := &fakeCloudFront{}
	if _, err := Deploy(context.Background(), up, cf, Options{Dir: dir, Bucket: "b", DistributionID: "E1"}); err == nil {
		t.Fatalf("expected upload error")
	}
	if len(cf.inputs) != 0 {
		t.Fatalf("failed upload must not invalidate")
	}
}
