package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmorgan81/ideo/internal/log"
	"github.com/samber/do"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// WriteError is a failure to persist a single image.
type WriteError struct {
	Index  int
	Target string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("image %d: writing %s: %v", e.Index, e.Target, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// FileUploader writes images to the local filesystem.
type FileUploader struct{}

func (*FileUploader) Upload(ctx context.Context, params UploadParams) (err error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Debug("writing", "file", params.Name, "bytes", len(params.Data))

	if dir := filepath.Dir(params.Name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(params.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	// A partially written file is removed rather than left behind truncated.
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(params.Name)
		}
	}()

	if _, err = f.Write(params.Data); err != nil {
		return err
	}
	return f.Sync()
}

const s3Scheme = "s3://"

func IsS3(target string) bool {
	return strings.HasPrefix(target, s3Scheme)
}

// Dispatcher routes each upload by target: s3:// URIs go to S3, everything
// else to the filesystem. The S3 uploader is resolved on first use so runs
// that never touch S3 never load AWS configuration.
type Dispatcher struct {
	File Uploader
	S3   func() (Uploader, error)
}

func NewDispatcher(i *do.Injector) (Uploader, error) {
	return &Dispatcher{
		File: do.MustInvoke[*FileUploader](i),
		S3: func() (Uploader, error) {
			u, err := do.Invoke[*S3Uploader](i)
			if err != nil {
				return nil, err
			}
			return u, nil
		},
	}, nil
}

func (d *Dispatcher) Upload(ctx context.Context, params UploadParams) error {
	if !IsS3(params.Name) {
		return d.File.Upload(ctx, params)
	}
	uploader, err := d.S3()
	if err != nil {
		return fmt.Errorf("setting up s3: %w", err)
	}
	return uploader.Upload(ctx, params)
}
