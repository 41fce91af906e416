package inject

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ideoconfig "github.com/dmorgan81/ideo/internal/config"
	"github.com/dmorgan81/ideo/internal/handler"
	"github.com/dmorgan81/ideo/internal/image"
	"github.com/dmorgan81/ideo/internal/log"
	"github.com/dmorgan81/ideo/internal/param"
	"github.com/dmorgan81/ideo/internal/store"
	"github.com/dmorgan81/ideo/internal/version"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Setup registers every provider lazily; nothing is built until the command
// asks for the handler, so --help and usage errors never load configuration.
func Setup(ctx context.Context, stdout, stderr io.Writer, level *slog.LevelVar) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideNamedValue[io.Writer](injector, "stdout", stdout)
	do.ProvideNamedValue[io.Writer](injector, "stderr", stderr)
	do.ProvideValue[*slog.LevelVar](injector, level)
	do.ProvideNamedValue[func() time.Time](injector, "clock", time.Now)
	do.ProvideNamedValue[string](injector, "user_agent", version.UserAgent())

	do.ProvideValue[*viper.Viper](injector, ideoconfig.NewEnv())
	do.Provide[*ideoconfig.Config](injector, func(i *do.Injector) (*ideoconfig.Config, error) {
		return ideoconfig.Load(do.MustInvoke[*viper.Viper](i))
	})
	do.Provide[*http.Client](injector, func(i *do.Injector) (*http.Client, error) {
		return &http.Client{Timeout: do.MustInvoke[*ideoconfig.Config](i).Timeout}, nil
	})

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return config.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})

	do.Provide[param.Fetcher](injector, func(i *do.Injector) (param.Fetcher, error) {
		if do.MustInvoke[*ideoconfig.Config](i).KeyParam == "" {
			return param.NewEnvFetcher(do.MustInvoke[*viper.Viper](i)), nil
		}
		fetcher, err := do.Invoke[*param.ParameterStoreFetcher](i)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	})
	do.Provide[*param.ParameterStoreFetcher](injector, param.NewParameterStoreFetcher)
	do.ProvideNamed[string](injector, "key_name", func(i *do.Injector) (string, error) {
		cfg := do.MustInvoke[*ideoconfig.Config](i)
		return lo.Ternary(cfg.KeyParam != "", cfg.KeyParam, ideoconfig.KeyEnv), nil
	})

	do.Provide[image.Generator](injector, image.NewIdeogramGenerator)
	do.ProvideValue[*store.FileUploader](injector, &store.FileUploader{})
	do.Provide[*store.S3Uploader](injector, store.NewS3Uploader)
	do.Provide[store.Uploader](injector, store.NewDispatcher)

	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}
