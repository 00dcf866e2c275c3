// Package main is the entrypoint for the CLI.
package main

import (
	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/flowlint/flowlint/cmd"
)

const flowlintVersion = "0.4.1"

func main() {
	ctx := kong.Parse(
		&cmd.CLI,
		kong.Name("flowlint"),
		kong.Description("Validates CI workflow documents and serves a workflow registry."),
		kong.UsageOnError(),
		kong.DefaultEnvars("FLOWLINT"),
		kong.Configuration(kongyaml.Loader, "/etc/flowlint/config.yaml", "~/.flowlint.yaml"),
	)
	err := ctx.Run(&cmd.Context{
		Version: flowlintVersion,
	})
	ctx.FatalIfErrorf(err)
}
