package image

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxReferenceSize = 10 << 20

// ErrReference marks an unusable character reference image.
var ErrReference = errors.New("invalid character reference")

var referenceTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type Reference struct {
	Name     string
	MIMEType string
	Data     []byte
}

func referenceType(path string) (string, error) {
	mime, ok := referenceTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%w: %s must be a JPEG, PNG or WebP image", ErrReference, path)
	}
	return mime, nil
}

// LoadReference reads a character reference image, enforcing the upstream
// type and size limits.
func LoadReference(path string) (*Reference, error) {
	mime, err := referenceType(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReference, err)
	}
	if info.Size() > maxReferenceSize {
		return nil, fmt.Errorf("%w: %s exceeds the 10MB limit", ErrReference, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReference, err)
	}
	return &Reference{Name: filepath.Base(path), MIMEType: mime, Data: data}, nil
}
