package cmd

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"

	"github.com/flowlint/flowlint/server/core/config"
	"github.com/flowlint/flowlint/server/core/fetch"
	"github.com/flowlint/flowlint/server/logging"
)

type ValidateCmd struct {
	Sources     []string         `arg:"" name:"source" help:"Workflow documents to validate. Local paths or go-getter URLs."`
	Concurrency int              `name:"concurrency" default:"8" help:"How many documents to fetch and validate at once."`
	LogLevel    logging.LogLevel `name:"log-level" default:"warn" help:"Log level. One of debug, info, warn, error."`
}

type validationResult struct {
	source string
	err    error
}

func (v *ValidateCmd) Run(_ *Context) error {
	logger, err := logging.NewLoggerFromLevel(v.LogLevel)
	if err != nil {
		return errors.Wrap(err, "initializing logger")
	}
	defer logger.Close() // nolint: errcheck

	fetcher := fetch.NewFetcher(logger)
	parser := &config.ParserValidator{}

	results := make([]validationResult, 0, len(v.Sources))
	var mu sync.Mutex

	swg := sizedwaitgroup.New(v.Concurrency)
	for _, source := range v.Sources {
		swg.Add()
		go func(source string) {
			defer swg.Done()
			err := validateSource(fetcher, parser, source)

			mu.Lock()
			results = append(results, validationResult{source: source, err: err})
			mu.Unlock()
		}(source)
	}
	swg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].source < results[j].source })

	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			fmt.Printf("%s: %s\n", result.source, result.err)
			continue
		}
		fmt.Printf("%s: ok\n", result.source)
	}

	if failed > 0 {
		return errors.Errorf("%d of %d documents failed validation", failed, len(results))
	}
	return nil
}

func validateSource(fetcher *fetch.Fetcher, parser *config.ParserValidator, source string) error {
	data, err := fetcher.Fetch(context.Background(), source)
	if err != nil {
		return err
	}
	_, err = parser.ParseWorkflowCfgData(data, source)
	return err
}
