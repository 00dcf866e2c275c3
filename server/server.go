// Package server wires the registry, reports store and HTTP API together and
// runs them until signalled to stop.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	tally "github.com/uber-go/tally/v4"
	"github.com/urfave/negroni"

	"github.com/flowlint/flowlint/server/controllers"
	"github.com/flowlint/flowlint/server/core/config"
	internal_http "github.com/flowlint/flowlint/server/http"
	"github.com/flowlint/flowlint/server/instrumentation"
	"github.com/flowlint/flowlint/server/logging"
	"github.com/flowlint/flowlint/server/metrics"
	"github.com/flowlint/flowlint/server/registry"
	"github.com/flowlint/flowlint/server/reports"
)

type Server struct {
	Logger          logging.Logger
	HTTPServerProxy *internal_http.ServerProxy
	Port            int
	StatsScope      tally.Scope
	StatsCloser     io.Closer
	Registry        *registry.Registry
	Reports         reports.Store
}

func NewServer(userConfig UserConfig, logger logging.Logger) (*Server, error) {
	scope, statsCloser, err := metrics.NewScope(logger, userConfig.StatsNamespace, userConfig.StatsdAddr)
	if err != nil {
		return nil, errors.Wrap(err, "initializing stats")
	}

	parser := &config.ParserValidator{}

	workflowRegistry, err := registry.New(userConfig.DataDir, parser, logger, scope)
	if err != nil {
		return nil, errors.Wrap(err, "initializing registry")
	}

	backend, err := reports.NewStorageBackend(userConfig.ReportsDir, logger)
	if err != nil {
		return nil, errors.Wrap(err, "initializing report storage")
	}
	reportsStore := reports.NewStore(backend)

	instrumentedParser := &instrumentation.WorkflowParser{
		Delegate: parser,
		Scope:    scope.SubScope("validator"),
	}

	controller := &controllers.WorkflowsController{
		Parser:   instrumentedParser,
		Registry: workflowRegistry,
		Reports:  reportsStore,
		Logger:   logger,
		Scope:    scope.SubScope("api"),
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", controller.Healthz).Methods(http.MethodGet)
	router.HandleFunc("/api/validate", controller.Validate).Methods(http.MethodPost)
	router.HandleFunc("/api/workflows", controller.List).Methods(http.MethodGet)
	router.HandleFunc("/api/workflows/{name}", controller.Save).Methods(http.MethodPut)
	router.HandleFunc("/api/workflows/{name}", controller.Get).Methods(http.MethodGet)
	router.HandleFunc("/api/workflows/{name}", controller.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/api/workflows/{name}/triggers/{event}", controller.Triggers).Methods(http.MethodGet)

	n := negroni.New(&negroni.Recovery{
		Logger:     log.New(os.Stdout, "", log.LstdFlags),
		PrintStack: false,
		StackAll:   false,
		StackSize:  1024 * 8,
	})
	n.UseFunc(internal_http.RequestID)
	n.UseHandler(router)

	httpServerProxy := &internal_http.ServerProxy{
		SSLCertFile: userConfig.SSLCertFile,
		SSLKeyFile:  userConfig.SSLKeyFile,
		Server: &http.Server{
			Addr:              fmt.Sprintf(":%d", userConfig.Port),
			Handler:           n,
			ReadHeaderTimeout: time.Second * 10,
		},
		Logger: logger,
	}

	return &Server{
		Logger:          logger,
		HTTPServerProxy: httpServerProxy,
		Port:            userConfig.Port,
		StatsScope:      scope,
		StatsCloser:     statsCloser,
		Registry:        workflowRegistry,
		Reports:         reportsStore,
	}, nil
}

// Start runs the server until SIGINT or SIGTERM, then drains connections.
func (s *Server) Start() error {
	defer s.shutdown()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	s.Logger.Info(fmt.Sprintf("flowlint started - listening on port %v", s.Port))

	go func() {
		err := s.HTTPServerProxy.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			s.Logger.Error(err.Error())
		}
	}()

	<-stop

	return nil
}

func (s *Server) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.HTTPServerProxy.Shutdown(ctx); err != nil {
		s.Logger.Error(err.Error())
	}

	if err := s.Registry.Close(); err != nil {
		s.Logger.Error(err.Error())
	}

	// flush stats before shutdown
	if err := s.StatsCloser.Close(); err != nil {
		s.Logger.Error(err.Error())
	}

	s.Logger.Close() // nolint: errcheck
}
