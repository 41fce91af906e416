package image

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"
)

// Schema locates fields in upstream JSON with jq expressions, so a change in
// the upstream response shape is a change to this table only. Images runs on
// the response document; URL, Inline and Seed run on each image entry; Message
// runs on an error body.
type Schema struct {
	Images  string
	URL     string
	Inline  string
	Seed    string
	Message string
}

var IdeogramV3 = Schema{
	Images:  ".data",
	URL:     ".url // empty",
	Inline:  ".b64_json // .image_base64 // empty",
	Seed:    ".seed // empty",
	Message: `.message // .error // .detail // empty | if type == "string" then . else tojson end`,
}

type compiledSchema struct {
	images, url, inline, seed, message *gojq.Query
}

func (s Schema) compile() (*compiledSchema, error) {
	var c compiledSchema
	for _, q := range []struct {
		name string
		expr string
		dst  **gojq.Query
	}{
		{"images", s.Images, &c.images},
		{"url", s.URL, &c.url},
		{"inline", s.Inline, &c.inline},
		{"seed", s.Seed, &c.seed},
		{"message", s.Message, &c.message},
	} {
		query, err := gojq.Parse(q.expr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s query %q: %w", q.name, q.expr, err)
		}
		*q.dst = query
	}
	return &c, nil
}

// entry is one image of a successful response: either inline bytes or a URL
// to fetch. An entry with neither was withheld upstream.
type entry struct {
	url    string
	inline []byte
	seed   string
}

func (c *compiledSchema) entries(body []byte) ([]entry, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ProtocolError{Reason: "response is not JSON: " + err.Error(), Raw: body}
	}

	v, ok, err := first(c.images, doc)
	if err != nil {
		return nil, &ProtocolError{Reason: err.Error(), Raw: body}
	}
	items, isList := v.([]any)
	if !ok || !isList {
		return nil, &ProtocolError{Reason: "response carries no image list", Raw: body}
	}

	entries := make([]entry, len(items))
	for i, item := range items {
		if _, isObject := item.(map[string]any); !isObject {
			return nil, &ProtocolError{Reason: fmt.Sprintf("image %d is not an object", i+1), Raw: body}
		}
		e, err := c.entry(item)
		if err != nil {
			return nil, &ProtocolError{Reason: fmt.Sprintf("image %d: %v", i+1, err), Raw: body}
		}
		entries[i] = e
	}
	return entries, nil
}

func (c *compiledSchema) entry(item any) (entry, error) {
	var e entry

	if v, ok, err := first(c.seed, item); err != nil {
		return e, err
	} else if ok {
		e.seed = scalar(v)
	}

	if v, ok, err := first(c.inline, item); err != nil {
		return e, err
	} else if ok {
		data, err := base64.StdEncoding.DecodeString(scalar(v))
		if err != nil {
			return e, fmt.Errorf("decoding inline payload: %w", err)
		}
		e.inline = data
		return e, nil
	}

	v, ok, err := first(c.url, item)
	if err != nil || !ok {
		return e, err
	}
	e.url = scalar(v)
	if strings.HasPrefix(e.url, "data:") {
		data, err := decodeDataURL(e.url)
		if err != nil {
			return e, err
		}
		e.url, e.inline = "", data
	}
	return e, nil
}

// errorMessage extracts the upstream error message, or "" when the body has none.
func (c *compiledSchema) errorMessage(body []byte) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	v, ok, err := first(c.message, doc)
	if err != nil || !ok {
		return ""
	}
	return scalar(v)
}

func first(q *gojq.Query, input any) (any, bool, error) {
	iter := q.Run(input)
	v, ok := iter.Next()
	if !ok {
		return nil, false, nil
	}
	if err, isErr := v.(error); isErr {
		return nil, false, err
	}
	return v, v != nil, nil
}

func scalar(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func decodeDataURL(s string) ([]byte, error) {
	header, data, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, errors.New("unsupported data URL")
	}
	return base64.StdEncoding.DecodeString(data)
}
