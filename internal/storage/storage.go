package storage

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"

	"ndr-radio/internal/config"
)

type Client struct {
	backend       StorageProvider
	bucketMedia   string
	publicBaseURL string

	// Cache for file listings
	cache      map[string][]string
	cacheTime  map[string]time.Time
	cacheMutex sync.RWMutex
}

const CacheTTL = 1 * time.Hour

func New(cfg *config.Config) *Client {
	var backend StorageProvider

	if cfg.Storage.Provider == "local" {
		backend = NewLocalProvider(cfg.Storage.LocalRoot)
	} else {
		// S3-compatible (AWS, Backblaze B2, MinIO...)
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
			Endpoint:         aws.String(cfg.Storage.Endpoint),
			Region:           aws.String(cfg.Storage.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		sess := session.Must(session.NewSession(s3Config))
		backend = NewS3Provider(sess)
	}

	base := cfg.Storage.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(cfg.Storage.Endpoint, "/") + "/" + cfg.Storage.BucketMedia
	}

	return &Client{
		backend:       backend,
		bucketMedia:   cfg.Storage.BucketMedia,
		publicBaseURL: strings.TrimRight(base, "/"),
		cache:         make(map[string][]string),
		cacheTime:     make(map[string]time.Time),
	}
}

// ListAudioFiles returns media keys under prefix, cached for CacheTTL.
func (c *Client) ListAudioFiles(prefix string) ([]string, error) {
	c.cacheMutex.RLock()
	files, ok := c.cache[prefix]
	ts := c.cacheTime[prefix]
	c.cacheMutex.RUnlock()

	if ok && time.Since(ts) < CacheTTL {
		return files, nil
	}

	keys, err := c.backend.List(c.bucketMedia, prefix)
	if err != nil {
		return nil, err
	}

	c.cacheMutex.Lock()
	c.cache[prefix] = keys
	c.cacheTime[prefix] = time.Now()
	c.cacheMutex.Unlock()

	return keys, nil
}

func (c *Client) DownloadFile(key string) (*FileObject, error) {
	return c.backend.Get(c.bucketMedia, key)
}

func (c *Client) UploadMediaFile(key string, body io.ReadSeeker, contentType string) error {
	return c.backend.Put(c.bucketMedia, key, body, contentType, "public, max-age=86400")
}

func (c *Client) DeleteMediaFile(key string) error {
	return c.backend.Delete(c.bucketMedia, key)
}

// PublicURL resolves a media key to the address listeners stream from.
func (c *Client) PublicURL(key string) string {
	return c.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}
