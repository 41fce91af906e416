package image

import (
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/samber/lo"
)

type field struct {
	name  string
	value func(Params) (any, bool)
}

// requestFields maps Params onto the upstream request. The order is the order
// of multipart form fields. A field whose value reports false is omitted so
// the API applies its own default.
var requestFields = []field{
	{"prompt", func(p Params) (any, bool) { return p.Prompt, true }},
	{"aspect_ratio", func(p Params) (any, bool) { return p.AspectRatio.String(), true }},
	{"rendering_speed", func(p Params) (any, bool) { return p.RenderingSpeed.String(), true }},
	{"num_images", func(p Params) (any, bool) { return p.NumImages, true }},
	{"style_type", func(p Params) (any, bool) { return p.StyleType.String(), p.StyleType.IsSet() }},
	{"negative_prompt", func(p Params) (any, bool) { return p.NegativePrompt, p.NegativePrompt != "" }},
	{"seed", func(p Params) (any, bool) { return lo.FromPtr(p.Seed), p.Seed != nil }},
	{"magic_prompt", func(p Params) (any, bool) { return p.MagicPrompt.String(), p.MagicPrompt.IsSet() }},
}

const referenceField = "character_reference_images"

// BuildPayload returns the JSON request body for p.
func BuildPayload(p Params) map[string]any {
	body := make(map[string]any, len(requestFields))
	for _, f := range requestFields {
		if v, ok := f.value(p); ok {
			body[f.name] = v
		}
	}
	return body
}

// writeForm encodes p and the reference image as a multipart form and closes w.
func writeForm(w *multipart.Writer, p Params, ref *Reference) error {
	for _, f := range requestFields {
		v, ok := f.value(p)
		if !ok {
			continue
		}
		if err := w.WriteField(f.name, fmt.Sprint(v)); err != nil {
			return err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, referenceField, ref.Name))
	header.Set("Content-Type", ref.MIMEType)
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(ref.Data); err != nil {
		return err
	}
	return w.Close()
}
