package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmorgan81/ideo/internal/image"
	"github.com/dmorgan81/ideo/internal/log"
	"github.com/dmorgan81/ideo/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Input struct {
	Params image.Params
	Output store.Spec
}

// Result is the outcome for one image: the target it was written to, or why
// it was not.
type Result struct {
	Index  int
	Target string
	Err    error
}

type Outcome []Result

func (o Outcome) Failed() int {
	return lo.CountBy(o, func(r Result) bool { return r.Err != nil })
}

func (o Outcome) Targets() []string {
	saved := lo.Filter(o, func(r Result, _ int) bool { return r.Err == nil })
	return lo.Map(saved, func(r Result, _ int) string { return r.Target })
}

// PartialError ends a run in which some images were saved and others were not.
type PartialError struct {
	Failed int
	Total  int
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%d of %d images failed", e.Failed, e.Total)
}

type Handler struct {
	generator image.Generator
	uploader  store.Uploader
	stdout    io.Writer
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		generator: do.MustInvoke[image.Generator](i),
		uploader:  do.MustInvoke[store.Uploader](i),
		stdout:    do.MustInvokeNamed[io.Writer](i, "stdout"),
	}, nil
}

// Handle generates the requested images and saves each one, printing every
// saved target to stdout in index order. A returned Outcome is always complete;
// the error is either a run-level failure (nil Outcome) or a *PartialError.
func (h *Handler) Handle(ctx context.Context, input Input) (Outcome, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("handler")
	log.Info("generating images",
		"count", input.Params.NumImages,
		"aspect", input.Params.AspectRatio,
		"speed", input.Params.RenderingSpeed,
	)
	start := time.Now()

	results, err := h.generator.Generate(ctx, input.Params)
	if err != nil {
		return nil, err
	}

	outcome := h.save(ctx, input, results)
	failed := outcome.Failed()
	log.Info("done",
		"saved", len(outcome)-failed,
		"failed", failed,
		"elapsed", time.Since(start).Round(100*time.Millisecond),
	)
	if failed > 0 {
		return outcome, &PartialError{Failed: failed, Total: len(outcome)}
	}
	return outcome, nil
}

func (h *Handler) save(ctx context.Context, input Input, results []image.Result) Outcome {
	log := log.FromContextOrDiscard(ctx).WithGroup("handler")

	outcome := make(Outcome, len(results))
	emit := newEmitter(len(results), func(r Result) {
		if r.Err != nil {
			log.Error("image failed", "index", r.Index, "err", r.Err)
			return
		}
		log.Info("saved", "index", r.Index, "target", r.Target)
		if _, err := fmt.Fprintln(h.stdout, r.Target); err != nil {
			log.Error("writing target to stdout", "target", r.Target, "err", err)
		}
	})

	var group errgroup.Group
	group.SetLimit(max(len(results), 1))
	for i, res := range results {
		i, res := i, res
		r := Result{Index: i + 1, Target: input.Output.Target(i+1, len(results)), Err: res.Err}
		group.Go(func() error {
			if r.Err == nil {
				if err := h.uploader.Upload(ctx, uploadParams(input.Params, r, res)); err != nil {
					r.Err = &store.WriteError{Index: r.Index, Target: r.Target, Err: err}
				}
			}
			outcome[i] = r
			emit.done(i, r)
			return nil
		})
	}
	_ = group.Wait()

	return outcome
}

func uploadParams(params image.Params, r Result, res image.Result) store.UploadParams {
	seed := res.Seed
	if seed == "" && params.Seed != nil {
		seed = strconv.FormatInt(*params.Seed, 10)
	}
	return store.UploadParams{
		Name:        r.Target,
		Data:        res.Data,
		ContentType: http.DetectContentType(res.Data),
		Metadata: map[string]string{
			"prompt": params.Prompt,
			"seed":   seed,
			"aspect": params.AspectRatio.String(),
			"index":  strconv.Itoa(r.Index),
		},
	}
}
