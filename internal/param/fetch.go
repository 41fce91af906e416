package param

import (
	"context"

	"github.com/dmorgan81/ideo/internal/log"
	"github.com/spf13/viper"
)

// Fetcher resolves a named secret at the moment it is needed.
type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}

// EnvFetcher reads secrets from the process environment. A missing variable
// yields "" and no error; callers decide whether empty is acceptable.
type EnvFetcher struct {
	env *viper.Viper
}

func NewEnvFetcher(env *viper.Viper) *EnvFetcher {
	return &EnvFetcher{env: env}
}

func (f *EnvFetcher) Fetch(ctx context.Context, name string) (string, error) {
	log.FromContextOrDiscard(ctx).WithGroup("env").Debug("reading api key", "name", name)
	return f.env.GetString(name), nil
}
