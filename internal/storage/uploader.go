// Package storage uploads resumes and company logos to the blob store over
// HTTP and hands back publicly readable URLs.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	BucketResumes = "resumes"
	BucketLogos   = "logos"
)

var whitespace = regexp.MustCompile(`\s+`)

type Uploader struct {
	client  *resty.Client
	baseURL string
	Log     *zap.Logger
}

func NewUploader(baseURL string, log *zap.Logger) *Uploader {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Uploader{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		Log:     log,
	}
}

// Upload stores data under a generated object name and returns its public
// URL. The name is prefixed with a timestamp so concurrent uploads of the
// same filename cannot collide.
func (u *Uploader) Upload(ctx context.Context, bucket, filename, contentType string, data []byte) (string, error) {
	objectName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitize(filename))

	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Post(fmt.Sprintf("%s/object/%s/%s", u.baseURL, bucket, objectName))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		u.Log.Error("blob upload failed",
			zap.String("bucket", bucket),
			zap.String("object", objectName),
			zap.Int("status", resp.StatusCode()))
		return "", fmt.Errorf("blob store returned %d", resp.StatusCode())
	}

	return u.PublicURL(bucket, objectName), nil
}

// PublicURL is the persisted, publicly readable location of an object.
func (u *Uploader) PublicURL(bucket, objectName string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", u.baseURL, bucket, objectName)
}

func sanitize(filename string) string {
	return whitespace.ReplaceAllString(filename, "_")
}
