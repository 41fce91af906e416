package store

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/ideo/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// S3 caps user metadata at 2KB per object; values are escaped to stay within
// the header character set and clipped on a character boundary.
const maxMetadataValue = 512

type PutObjectAPI interface {
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	Client PutObjectAPI
}

func NewS3Uploader(i *do.Injector) (*S3Uploader, error) {
	return &S3Uploader{Client: do.MustInvoke[*s3.Client](i)}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, params UploadParams) error {
	bucket, key, err := ParseS3(params.Name)
	if err != nil {
		return err
	}

	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With(
		"bucket", bucket,
		"key", key,
		"content-type", params.ContentType,
	)
	log.Debug("uploading to s3")

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		ContentType:  aws.String(params.ContentType),
		Body:         bytes.NewReader(params.Data),
		Metadata:     lo.MapValues(params.Metadata, func(v string, _ string) string { return metadataValue(v) }),
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	return err
}

// ParseS3 splits s3://bucket/key.
func ParseS3(target string) (bucket, key string, err error) {
	bucket, key, _ = strings.Cut(strings.TrimPrefix(target, s3Scheme), "/")
	if !IsS3(target) || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("invalid s3 target %q, want s3://bucket/key", target)
	}
	return bucket, key, nil
}

func metadataValue(v string) string {
	var b strings.Builder
	for _, r := range v {
		escaped := url.QueryEscape(string(r))
		if b.Len()+len(escaped) > maxMetadataValue {
			break
		}
		b.WriteString(escaped)
	}
	return b.String()
}
