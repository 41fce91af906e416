package image

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// InvalidValueError reports a token outside one of the closed option sets.
type InvalidValueError struct {
	Kind    string
	Value   string
	Allowed []string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q (allowed: %s)", e.Kind, e.Value, strings.Join(e.Allowed, ", "))
}

// Each enum below is a uint8 indexing its name table. Optional enums reserve
// zero for "not set", which the request builder omits.

type AspectRatio uint8

const (
	Aspect1x1 AspectRatio = iota
	Aspect16x9
	Aspect9x16
	Aspect4x3
	Aspect3x4
	Aspect3x2
	Aspect2x3
	Aspect4x5
	Aspect5x4
	Aspect16x10
	Aspect10x16
	Aspect2x1
	Aspect1x2
	Aspect3x1
	Aspect1x3
)

var aspectRatioNames = []string{
	"1x1", "16x9", "9x16", "4x3", "3x4", "3x2", "2x3", "4x5", "5x4", "16x10", "10x16", "2x1", "1x2", "3x1", "1x3",
}

func ParseAspectRatio(s string) (AspectRatio, error) {
	return parseEnum[AspectRatio]("aspect ratio", s, aspectRatioNames, 0)
}

func AspectRatios() []string              { return aspectRatioNames }
func (a AspectRatio) String() string      { return enumString(a, aspectRatioNames) }
func (a AspectRatio) valid() bool         { return int(a) < len(aspectRatioNames) }
func (AspectRatio) Type() string          { return "ratio" }
func (a *AspectRatio) Set(s string) error { return set(a, s, ParseAspectRatio) }

type RenderingSpeed uint8

const (
	SpeedFlash RenderingSpeed = iota
	SpeedTurbo
	SpeedDefault
	SpeedQuality
)

var renderingSpeedNames = []string{"FLASH", "TURBO", "DEFAULT", "QUALITY"}

func ParseRenderingSpeed(s string) (RenderingSpeed, error) {
	return parseEnum[RenderingSpeed]("rendering speed", s, renderingSpeedNames, 0)
}

func RenderingSpeeds() []string              { return renderingSpeedNames }
func (r RenderingSpeed) String() string      { return enumString(r, renderingSpeedNames) }
func (r RenderingSpeed) valid() bool         { return int(r) < len(renderingSpeedNames) }
func (RenderingSpeed) Type() string          { return "speed" }
func (r *RenderingSpeed) Set(s string) error { return set(r, s, ParseRenderingSpeed) }

type StyleType uint8

const (
	StyleUnset StyleType = iota
	StyleAuto
	StyleGeneral
	StyleRealistic
	StyleDesign
	StyleFiction
)

var styleTypeNames = []string{"", "AUTO", "GENERAL", "REALISTIC", "DESIGN", "FICTION"}

func ParseStyleType(s string) (StyleType, error) {
	return parseEnum[StyleType]("style type", s, styleTypeNames, StyleAuto)
}

func StyleTypes() []string              { return styleTypeNames[StyleAuto:] }
func (t StyleType) String() string      { return enumString(t, styleTypeNames) }
func (t StyleType) IsSet() bool         { return t != StyleUnset }
func (t StyleType) valid() bool         { return int(t) < len(styleTypeNames) }
func (StyleType) Type() string          { return "type" }
func (t *StyleType) Set(s string) error { return set(t, s, ParseStyleType) }

type MagicPrompt uint8

const (
	MagicUnset MagicPrompt = iota
	MagicAuto
	MagicOn
	MagicOff
)

var magicPromptNames = []string{"", "AUTO", "ON", "OFF"}

func ParseMagicPrompt(s string) (MagicPrompt, error) {
	return parseEnum[MagicPrompt]("magic prompt mode", s, magicPromptNames, MagicAuto)
}

func MagicPrompts() []string              { return magicPromptNames[MagicAuto:] }
func (m MagicPrompt) String() string      { return enumString(m, magicPromptNames) }
func (m MagicPrompt) IsSet() bool         { return m != MagicUnset }
func (m MagicPrompt) valid() bool         { return int(m) < len(magicPromptNames) }
func (MagicPrompt) Type() string          { return "mode" }
func (m *MagicPrompt) Set(s string) error { return set(m, s, ParseMagicPrompt) }

// parseEnum matches s case-insensitively against names[first:].
func parseEnum[T ~uint8](kind, s string, names []string, first T) (T, error) {
	allowed := names[first:]
	_, idx, ok := lo.FindIndexOf(allowed, func(name string) bool {
		return strings.EqualFold(name, strings.TrimSpace(s))
	})
	if !ok {
		return 0, &InvalidValueError{Kind: kind, Value: s, Allowed: allowed}
	}
	return first + T(idx), nil
}

func enumString[T ~uint8](v T, names []string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%T(%d)", v, v)
}

func set[T ~uint8](dst *T, s string, parse func(string) (T, error)) error {
	v, err := parse(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
