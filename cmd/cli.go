// Package cmd defines the flowlint command line.
package cmd

// Context carries values main binds for every subcommand.
type Context struct {
	Version string
}

var CLI struct {
	Version  VersionCmd  `cmd:"" help:"Print the flowlint version and exit."`
	Validate ValidateCmd `cmd:"" help:"Validate workflow documents and print the findings."`
	Server   ServerCmd   `cmd:"" help:"Run the flowlint server."`
}
