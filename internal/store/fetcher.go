package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Fetched is one downloaded reference image.
type Fetched struct {
	Data []byte
	MIME string
	URL  string
}

// Fetcher resolves an opaque remote identifier from the reference library
// into image bytes. Implementations fail per identifier; the store decides
// what to do with individual failures.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*Fetched, error)
}

// BucketFetcher reads reference images from a GCS bucket. Identifiers are
// object names relative to the configured prefix.
type BucketFetcher struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewBucketFetcher(ctx context.Context, bucket, prefix, credentialsFile string) (*BucketFetcher, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}
	return &BucketFetcher{client: client, bucket: bucket, prefix: prefix}, nil
}

func (f *BucketFetcher) Fetch(ctx context.Context, id string) (*Fetched, error) {
	object := f.prefix + id
	rc, err := f.client.Bucket(f.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", object, err)
	}
	mime := rc.Attrs.ContentType
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return &Fetched{
		Data: data,
		MIME: mime,
		URL:  fmt.Sprintf("https://storage.googleapis.com/%s/%s", f.bucket, object),
	}, nil
}

// DriveFetcher downloads publicly shared Google Drive files by file id, the
// same way the original reference library was published.
type DriveFetcher struct {
	httpClient *http.Client
	baseURL    string
}

func NewDriveFetcher(httpClient *http.Client) *DriveFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &DriveFetcher{
		httpClient: httpClient,
		baseURL:    "https://drive.google.com/uc",
	}
}

func (f *DriveFetcher) Fetch(ctx context.Context, id string) (*Fetched, error) {
	u := fmt.Sprintf("%s?export=download&id=%s", f.baseURL, url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download %s: status %d", id, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" || strings.HasPrefix(mime, "text/") {
		mime = http.DetectContentType(data)
	}
	return &Fetched{Data: data, MIME: mime, URL: u}, nil
}

var (
	_ Fetcher = (*BucketFetcher)(nil)
	_ Fetcher = (*DriveFetcher)(nil)
)
