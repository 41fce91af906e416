package store

import (
	"context"
	"errors"
	"io"
	"os"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileUploader(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "deeper", "cat.png")

	require.NoError(t, (&FileUploader{}).Upload(context.Background(), UploadParams{Name: target, Data: []byte("png")}))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	// existing files are overwritten
	require.NoError(t, (&FileUploader{}).Upload(context.Background(), UploadParams{Name: target, Data: []byte("new")}))
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFileUploaderFailures(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := (&FileUploader{}).Upload(context.Background(), UploadParams{Name: filepath.Join(blocker, "cat.png"), Data: []byte("png")})
	assert.Error(t, err)

	err = (&FileUploader{}).Upload(context.Background(), UploadParams{Name: dir, Data: []byte("png")})
	assert.Error(t, err)
}

type recordingUploader struct {
	names []string
	err   error
}

func (u *recordingUploader) Upload(_ context.Context, params UploadParams) error {
	u.names = append(u.names, params.Name)
	return u.err
}

func TestDispatcher(t *testing.T) {
	file := &recordingUploader{}
	remote := &recordingUploader{}
	resolved := 0
	d := &Dispatcher{
		File: file,
		S3: func() (Uploader, error) {
			resolved++
			return remote, nil
		},
	}

	require.NoError(t, d.Upload(context.Background(), UploadParams{Name: "out.png"}))
	assert.Zero(t, resolved)

	require.NoError(t, d.Upload(context.Background(), UploadParams{Name: "s3://bucket/out.png"}))
	assert.Equal(t, []string{"out.png"}, file.names)
	assert.Equal(t, []string{"s3://bucket/out.png"}, remote.names)
	assert.Equal(t, 1, resolved)
}

func TestDispatcherS3SetupError(t *testing.T) {
	d := &Dispatcher{
		File: &recordingUploader{},
		S3: func() (Uploader, error) {
			return nil, errors.New("no credentials")
		},
	}
	err := d.Upload(context.Background(), UploadParams{Name: "s3://bucket/out.png"})
	assert.ErrorContains(t, err, "no credentials")
}

type fakePutObject struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakePutObject) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = input
	f.body, _ = io.ReadAll(input.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader(t *testing.T) {
	client := &fakePutObject{}
	u := &S3Uploader{Client: client}

	err := u.Upload(context.Background(), UploadParams{
		Name:        "s3://my-bucket/cats/cat_1.png",
		Data:        []byte("png"),
		ContentType: "image/png",
		Metadata:    map[string]string{"prompt": "a cat, wearing a hat", "index": "1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "my-bucket", aws.ToString(client.input.Bucket))
	assert.Equal(t, "cats/cat_1.png", aws.ToString(client.input.Key))
	assert.Equal(t, "image/png", aws.ToString(client.input.ContentType))
	assert.Equal(t, s3types.StorageClassIntelligentTiering, client.input.StorageClass)
	assert.Equal(t, map[string]string{"prompt": "a+cat%2C+wearing+a+hat", "index": "1"}, client.input.Metadata)
	assert.Equal(t, "png", string(client.body))
}

func TestParseS3(t *testing.T) {
	bucket, key, err := ParseS3("s3://bucket/a/b.png")
	require.NoError(t, err)
	assert.Equal(t, "bucket", bucket)
	assert.Equal(t, "a/b.png", key)

	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/", "s3:///key.png", "s3://bucket/dir/", "out.png"} {
		_, _, err := ParseS3(bad)
		assert.Error(t, err, bad)
	}
}

func TestMetadataValueClipped(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, metadataValue(string(long)), maxMetadataValue)
}

func TestMetadataValueKeepsEscapesWhole(t *testing.T) {
	for pad := 0; pad < 3; pad++ {
		v := metadataValue(strings.Repeat("x", pad) + strings.Repeat("é", 200))
		assert.LessOrEqual(t, len(v), maxMetadataValue)

		unescaped, err := url.QueryUnescape(v)
		require.NoError(t, err, "pad %d: %q", pad, v[len(v)-4:])
		assert.True(t, utf8.ValidString(unescaped), "pad %d", pad)
	}
}
