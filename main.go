package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/dmorgan81/ideo/internal/cmd"
	"github.com/dmorgan81/ideo/internal/inject"
	"github.com/dmorgan81/ideo/internal/log"
	"github.com/samber/do"
)

func main() {
	var level slog.LevelVar
	ctx := log.NewContext(context.Background(), log.New(os.Stderr, &level))
	injector := inject.Setup(ctx, os.Stdout, os.Stderr, &level)
	stderr := do.MustInvokeNamed[io.Writer](injector, "stderr")
	code := cmd.Execute(ctx, cmd.NewRoot(injector), os.Args[1:], stderr)
	_ = injector.Shutdown()
	os.Exit(code)
}
