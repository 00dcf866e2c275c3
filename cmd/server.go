package cmd

import (
	"github.com/pkg/errors"

	"github.com/flowlint/flowlint/server"
	"github.com/flowlint/flowlint/server/logging"
)

type ServerCmd struct {
	server.UserConfig `embed:""`
}

func (s *ServerCmd) Run(ctx *Context) error {
	logger, err := logging.NewLoggerFromLevel(s.LogLevel)
	if err != nil {
		return errors.Wrap(err, "initializing logger")
	}

	srv, err := server.NewServer(s.UserConfig, logger)
	if err != nil {
		return errors.Wrap(err, "initializing server")
	}
	return srv.Start()
}
