package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"github.com/dmorgan81/ideo/internal/config"
	"github.com/dmorgan81/ideo/internal/log"
	"github.com/dmorgan81/ideo/internal/param"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const generatePath = "/v1/ideogram-v3/generate"

var errWithheld = errors.New("response carried no image payload")

// IdeogramGenerator calls the Ideogram v3 generate endpoint. A single attempt
// is made per call: generations are billed and not idempotent.
type IdeogramGenerator struct {
	Client    *http.Client
	BaseURL   string
	Keys      param.Fetcher
	KeyName   string
	Schema    Schema
	UserAgent string

	once     sync.Once
	compiled *compiledSchema
	err      error
}

func NewIdeogramGenerator(i *do.Injector) (Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &IdeogramGenerator{
		Client:    do.MustInvoke[*http.Client](i),
		BaseURL:   cfg.BaseURL,
		Keys:      do.MustInvoke[param.Fetcher](i),
		KeyName:   do.MustInvokeNamed[string](i, "key_name"),
		Schema:    IdeogramV3,
		UserAgent: do.MustInvokeNamed[string](i, "user_agent"),
	}, nil
}

func (g *IdeogramGenerator) schema() (*compiledSchema, error) {
	g.once.Do(func() {
		g.compiled, g.err = g.Schema.compile()
	})
	return g.compiled, g.err
}

func (g *IdeogramGenerator) Generate(ctx context.Context, params Params) ([]Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("ideogram")

	schema, err := g.schema()
	if err != nil {
		return nil, err
	}

	key, err := g.Keys.Fetch(ctx, g.KeyName)
	if err != nil {
		return nil, &AuthError{Source: g.KeyName, Err: err}
	}
	if strings.TrimSpace(key) == "" {
		return nil, &AuthError{Source: g.KeyName}
	}

	req, err := g.newRequest(ctx, params, key)
	if err != nil {
		return nil, err
	}

	log.Debug("sending generation request", "url", req.URL.String(), "num_images", params.NumImages)
	resp, err := g.Client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Err: err}
		}
		return nil, fmt.Errorf("sending generation request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Err: err}
		}
		return nil, fmt.Errorf("reading generation response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pretty bytes.Buffer
		if json.Indent(&pretty, body, "", "  ") == nil {
			log.Debug("generation request rejected", "status", resp.StatusCode, "body", pretty.String())
		}
		message := schema.errorMessage(body)
		if message == "" {
			message = strings.TrimSpace(string(body))
		}
		return nil, &APIError{Status: resp.StatusCode, Message: message}
	}

	entries, err := schema.entries(body)
	if err != nil {
		return nil, err
	}
	if len(entries) != params.NumImages {
		return nil, &ProtocolError{
			Reason: fmt.Sprintf("requested %d images but response carried %d", params.NumImages, len(entries)),
			Raw:    body,
		}
	}
	log.Debug("received generation response", "images", len(entries))

	return g.resolve(ctx, entries), nil
}

func (g *IdeogramGenerator) newRequest(ctx context.Context, params Params, key string) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	if params.CharacterRef != "" {
		ref, err := LoadReference(params.CharacterRef)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if err := writeForm(w, params, ref); err != nil {
			return nil, fmt.Errorf("encoding request form: %w", err)
		}
		body, contentType = &buf, w.FormDataContentType()
	} else {
		data, err := json.Marshal(BuildPayload(params))
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(g.BaseURL, "/")+generatePath, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Api-Key", key)
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}
	return req, nil
}

// resolve turns entries into results, fetching URL entries concurrently. A
// failed fetch only affects its own result.
func (g *IdeogramGenerator) resolve(ctx context.Context, entries []entry) []Result {
	results := make([]Result, len(entries))
	var group errgroup.Group
	group.SetLimit(max(len(entries), 1))

	for i, e := range entries {
		i, e := i, e
		results[i] = Result{Index: i + 1, Seed: e.seed}
		switch {
		case e.inline != nil:
			results[i].Data = e.inline
		case e.url == "":
			results[i].Err = &FetchError{Index: i + 1, Err: errWithheld}
		default:
			group.Go(func() error {
				data, err := g.fetch(ctx, e.url)
				if err != nil {
					results[i].Err = &FetchError{Index: i + 1, URL: e.url, Err: err}
					return nil
				}
				results[i].Data = data
				return nil
			})
		}
	}

	_ = group.Wait()
	return results
}

func (g *IdeogramGenerator) fetch(ctx context.Context, url string) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("ideogram")
	log.Debug("fetching image", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
