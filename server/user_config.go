package server

import (
	"github.com/pkg/errors"

	"github.com/flowlint/flowlint/server/logging"
)

// UserConfig holds all the server settings a user can tweak. Fields are bound
// to flags, the FLOWLINT_ env prefix and the optional config file by kong.
type UserConfig struct {
	Port           int              `name:"port" default:"4141" help:"Port the server listens on."`
	DataDir        string           `name:"data-dir" type:"path" default:"~/.flowlint" help:"Directory the workflow registry is stored in."`
	ReportsDir     string           `name:"reports-dir" type:"path" help:"Directory validation reports are persisted to. Reports stay in memory when unset."`
	LogLevel       logging.LogLevel `name:"log-level" default:"info" help:"Log level. One of debug, info, warn, error."`
	StatsNamespace string           `name:"stats-namespace" default:"flowlint" help:"Prefix for emitted stats."`
	StatsdAddr     string           `name:"statsd-addr" help:"host:port of a statsd sink. Stats are dropped when unset."`
	SSLCertFile    string           `name:"ssl-cert-file" type:"existingfile" optional:"" help:"PEM certificate to serve TLS with."`
	SSLKeyFile     string           `name:"ssl-key-file" type:"existingfile" optional:"" help:"Private key for --ssl-cert-file."`
}

func (u UserConfig) Validate() error {
	if (u.SSLCertFile == "") != (u.SSLKeyFile == "") {
		return errors.New("--ssl-cert-file and --ssl-key-file must be set together")
	}
	return nil
}
