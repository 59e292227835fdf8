// Package audit checks that every image referenced by the site's records
// exists in object storage.
package audit

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/curingwithcare/care-site/internal/db"
	"github.com/curingwithcare/care-site/internal/logging"
	"github.com/curingwithcare/care-site/internal/shell"
	"github.com/curingwithcare/care-site/internal/storage"
	"github.com/curingwithcare/care-site/internal/viewmodel"
)

// Finding kinds.
const (
	KindMissing      = "missing_in_s3"
	KindCheckFailed  = "check_failed"
	KindEmptyGallery = "empty_gallery"
	KindListFailed   = "list_failed"
)

type Finding struct {
	Kind   string `json:"kind"`
	Key    string `json:"key"`
	Source string `json:"source"`
}

type Report struct {
	CheckedObjects int       `json:"checked_objects"`
	CheckedFolders int       `json:"checked_folders"`
	Findings       []Finding `json:"findings"`
}

// Auditor walks the records and probes storage for each reference.
type Auditor struct {
	Records *db.Records
	Head    s3.HeadObjectAPIClient
	Lister  storage.Lister
	Bucket  string
	// LandingSection is the data row holding landing page file ids.
	LandingSection string
	// Concurrency bounds in-flight storage requests.
	Concurrency int
}

type ref struct {
	key    string
	source string
}

// storageKey returns the object key for a stored image path, or "" when the
// image is served from the site itself or another host.
func storageKey(p string) string {
	if p == "" || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return ""
	}
	return p
}

// Run performs the audit. Record fetch failures abort the run; storage
// failures are reported as findings.
func (a *Auditor) Run(ctx context.Context) (Report, error) {
	var rep Report
	var refs []ref

	branches, err := a.Records.ListBranches(ctx)
	if err != nil {
		return rep, err
	}
	for _, b := range branches {
		if b.Image != nil {
			if k := storageKey(*b.Image); k != "" {
				refs = append(refs, ref{key: k, source: "branch:" + b.Slug})
			}
		}
		for _, rd := range b.RDs {
			if rd.Image != "" {
				refs = append(refs, ref{key: viewmodel.DirectorsFolder + "/" + strings.TrimLeft(rd.Image, "/"), source: "rd:" + b.Slug + ":" + rd.Name})
			}
		}
	}

	if a.LandingSection != "" {
		files, err := a.Records.LandingFiles(ctx, a.LandingSection)
		switch {
		case errors.Is(err, db.ErrNotFound):
		case err != nil:
			return rep, err
		default:
			for _, id := range files.FileIDs {
				if k := storageKey(id); k != "" {
					refs = append(refs, ref{key: k, source: "landing:" + a.LandingSection})
				}
			}
		}
	}

	events, err := a.Records.ListEvents(ctx)
	if err != nil {
		return rep, err
	}

	heads := shell.Gather(ctx, len(refs), a.Concurrency, func(ctx context.Context, i int) (*Finding, error) {
		return a.checkObject(ctx, refs[i]), nil
	})
	rep.CheckedObjects = len(refs)
	for _, h := range heads {
		if h.Value != nil {
			rep.Findings = append(rep.Findings, *h.Value)
		}
	}

	var folders []ref
	for _, e := range events {
		if f := viewmodel.EventFolder(e); f != "" {
			folders = append(folders, ref{key: f, source: "event:" + e.Title})
		}
	}
	lists := shell.Gather(ctx, len(folders), a.Concurrency, func(ctx context.Context, i int) (*Finding, error) {
		return a.checkFolder(ctx, folders[i]), nil
	})
	rep.CheckedFolders = len(folders)
	for _, l := range lists {
		if l.Value != nil {
			rep.Findings = append(rep.Findings, *l.Value)
		}
	}

	logging.LogKV("info", "asset audit complete", map[string]interface{}{
		"objects":  rep.CheckedObjects,
		"folders":  rep.CheckedFolders,
		"findings": len(rep.Findings),
	})
	return rep, nil
}

func (a *Auditor) checkObject(ctx context.Context, r ref) *Finding {
	_, err := a.Head.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(a.Bucket), Key: aws.String(r.key)})
	if err == nil {
		return nil
	}
	var nf *s3types.NotFound
	if errors.As(err, &nf) {
		return &Finding{Kind: KindMissing, Key: r.key, Source: r.source}
	}
	logging.LogKV("warn", "head object failed", map[string]interface{}{"key": r.key, "error": err})
	return &Finding{Kind: KindCheckFailed, Key: r.key, Source: r.source}
}

func (a *Auditor) checkFolder(ctx context.Context, r ref) *Finding {
	names, err := a.Lister.ListFolder(ctx, r.key)
	if err != nil {
		logging.LogKV("warn", "list folder failed", map[string]interface{}{"prefix": r.key, "error": err})
		return &Finding{Kind: KindListFailed, Key: r.key, Source: r.source}
	}
	if len(viewmodel.FilterImageNames(names)) == 0 {
		return &Finding{Kind: KindEmptyGallery, Key: r.key, Source: r.source}
	}
	return nil
}
