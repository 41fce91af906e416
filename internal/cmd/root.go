package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dmorgan81/ideo/internal/config"
	"github.com/dmorgan81/ideo/internal/handler"
	"github.com/dmorgan81/ideo/internal/image"
	"github.com/dmorgan81/ideo/internal/store"
	"github.com/dmorgan81/ideo/internal/version"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// UsageError is malformed or missing command-line input. It is always
// detected before any network call.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

type options struct {
	params  image.Params
	output  string
	seed    int64
	verbose bool
}

func (o *options) input(cmd *cobra.Command, prompt string, now time.Time) (handler.Input, error) {
	params := o.params
	params.Prompt = strings.TrimSpace(prompt)
	if cmd.Flags().Changed("seed") {
		seed := o.seed
		params.Seed = &seed
	}
	if err := params.Validate(); err != nil {
		return handler.Input{}, &UsageError{Err: err}
	}
	if store.IsS3(o.output) {
		if _, _, err := store.ParseS3(o.output); err != nil {
			return handler.Input{}, &UsageError{Err: err}
		}
	}
	return handler.Input{
		Params: params,
		Output: store.Spec{Template: o.output, Timestamp: now.Unix()},
	}, nil
}

func NewRoot(injector *do.Injector) *cobra.Command {
	opts := options{params: image.DefaultParams()}

	cmd := &cobra.Command{
		Use:   "ideo [options] <prompt>",
		Short: "Generate images with the Ideogram v3 API",
		Long: `Generate images with the Ideogram v3 API.

File paths are printed to stdout, one per line, as each image is saved.
Status messages and errors go to stderr.

The API key is read from ` + config.KeyEnv + `.`,
		Example: `  ideo "a cat wearing a tiny hat"
  ideo -n 3 -o logos/logo.png --style DESIGN "minimal fox logo"
  open "$(ideo -a 16x9 "foggy harbour at dawn")"`,
		Version:       version.Revision(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &UsageError{Err: fmt.Errorf("expected exactly one prompt argument, got %d", len(args))}
			}
			return nil
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.verbose {
				do.MustInvoke[*slog.LevelVar](injector).Set(slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			now := do.MustInvokeNamed[func() time.Time](injector, "clock")
			input, err := opts.input(cmd, args[0], now())
			if err != nil {
				return err
			}

			h, err := do.Invoke[*handler.Handler](injector)
			if err != nil {
				return err
			}
			_, err = h.Handle(cmd.Context(), input)
			return err
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVarP(&opts.output, "output", "o", "", "output path, template or s3://bucket/key (default: ideo_<timestamp>.png)")
	f.VarP(&opts.params.AspectRatio, "aspect", "a", "aspect ratio: "+strings.Join(image.AspectRatios(), ","))
	f.VarP(&opts.params.RenderingSpeed, "speed", "s", "rendering speed: "+strings.Join(image.RenderingSpeeds(), "|"))
	f.IntVarP(&opts.params.NumImages, "num", "n", 1, "number of images to generate")
	f.Var(&opts.params.StyleType, "style", "style type: "+strings.Join(image.StyleTypes(), "|"))
	f.StringVar(&opts.params.NegativePrompt, "negative", "", "negative prompt, what to exclude from the image")
	f.Int64Var(&opts.seed, "seed", 0, "random seed for reproducible generation")
	f.Var(&opts.params.MagicPrompt, "magic-prompt", "magic prompt mode: "+strings.Join(image.MagicPrompts(), "|"))
	f.StringVar(&opts.params.CharacterRef, "character-ref", "", "character reference image (JPEG, PNG or WebP, max 10MB)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug output on stderr")

	return cmd
}

// Execute runs root with args and maps the result to a process exit code.
// Every error is reported on stderr.
func Execute(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetErr(stderr)

	// -h/--help wins over malformed flags, which pflag rejects before cobra
	// gets to the help flag.
	if wantsHelp(args) {
		root.InitDefaultHelpFlag()
		root.InitDefaultVersionFlag()
		if err := root.Help(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitFailure
		}
		return ExitOK
	}

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)

	var (
		usage    *UsageError
		auth     *image.AuthError
		protocol *image.ProtocolError
	)
	switch {
	case errors.As(err, &usage), errors.Is(err, image.ErrReference):
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
		return ExitUsage
	case errors.As(err, &auth):
		if auth.Err == nil && auth.Source == config.KeyEnv {
			fmt.Fprintf(stderr, "Set %s to your Ideogram API key.\n", config.KeyEnv)
		}
	case errors.As(err, &protocol):
		fmt.Fprintf(stderr, "Response body: %s\n", protocol.Raw)
	}
	return ExitFailure
}

func wantsHelp(args []string) bool {
	if i := lo.IndexOf(args, "--"); i >= 0 {
		args = args[:i]
	}
	return lo.ContainsBy(args, func(arg string) bool { return arg == "-h" || arg == "--help" })
}
