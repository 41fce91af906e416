package image

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Params is the generation request built once per invocation. It is passed
// by value and never modified after Validate succeeds.
type Params struct {
	Prompt         string
	AspectRatio    AspectRatio
	RenderingSpeed RenderingSpeed
	NumImages      int
	StyleType      StyleType
	NegativePrompt string
	Seed           *int64
	MagicPrompt    MagicPrompt
	CharacterRef   string
}

// DefaultParams returns the parameters used when a flag is not given.
func DefaultParams() Params {
	return Params{
		AspectRatio:    Aspect1x1,
		RenderingSpeed: SpeedTurbo,
		NumImages:      1,
	}
}

func (p Params) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return errors.New("prompt must not be empty")
	}
	if p.NumImages < 1 {
		return fmt.Errorf("number of images must be a positive integer, got %d", p.NumImages)
	}
	if !p.AspectRatio.valid() || !p.RenderingSpeed.valid() || !p.StyleType.valid() || !p.MagicPrompt.valid() {
		return errors.New("enumerated option out of range")
	}
	if p.CharacterRef != "" {
		if _, err := referenceType(p.CharacterRef); err != nil {
			return err
		}
	}
	return nil
}

// Result is one returned image. Index is 1-based and follows the order of the
// upstream response. Err is set when the image bytes could not be obtained.
type Result struct {
	Index int
	Data  []byte
	Seed  string
	Err   error
}

type Generator interface {
	Generate(context.Context, Params) ([]Result, error)
}
