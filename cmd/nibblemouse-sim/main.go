// Command nibblemouse-sim runs the mouse bridge against a simulated legacy
// port, fed by a virtual USB boot mouse or a Linux hidraw mouse.
//
// Usage:
//
//	nibblemouse-sim run --script square.yaml
//	nibblemouse-sim run --interactive --bridge.scale=1
//	nibblemouse-sim hidraw --device /dev/hidraw2
//	nibblemouse-sim config init run --format toml
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/ardnew/nibblemouse/internal/cli"
	"github.com/ardnew/nibblemouse/internal/configpaths"
)

func main() {
	userCfg := configpaths.FindUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.CandidatePaths(userCfg)

	var c cli.CLI
	kctx := kong.Parse(&c,
		kong.Name("nibblemouse-sim"),
		kong.Description("USB boot mouse to legacy nibble port bridge simulator"),
		kong.UsageOnError(),
		// Flags and environment override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logFile, err := c.Log.Setup(os.Stderr)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to set up logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	stopProf, err := c.Prof.Start()
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to start profiling: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(os.Stdout, (*io.Writer)(nil))

	err = kctx.Run()
	stop()
	if perr := stopProf(); perr != nil && err == nil {
		err = perr
	}
	_ = logFile.Close()
	kctx.FatalIfErrorf(err)
}
