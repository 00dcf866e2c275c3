// Package fetch resolves workflow document sources into local bytes. Sources
// can be plain file paths or anything go-getter understands (http(s), git,
// s3 style URLs).
package fetch

import (
	"context"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
	"github.com/pkg/errors"

	"github.com/flowlint/flowlint/server/logging"
)

var hashiGetFile = func(ctx context.Context, dst, src string) error {
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Mode: getter.ClientModeFile,
	}
	return client.Get()
}

type Fetcher struct {
	Logger logging.Logger
}

func NewFetcher(logger logging.Logger) *Fetcher {
	return &Fetcher{
		Logger: logger,
	}
}

// Fetch returns the document bytes for source. Local files are read directly;
// everything else goes through go-getter into a scratch dir that is cleaned
// up before returning.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", source)
		}
		return data, nil
	}

	scratchDir, err := os.MkdirTemp("", "flowlint-fetch")
	if err != nil {
		return nil, errors.Wrap(err, "creating scratch dir")
	}
	defer os.RemoveAll(scratchDir) // nolint: errcheck

	dst := filepath.Join(scratchDir, "workflow.yaml")
	if err := hashiGetFile(ctx, dst, source); err != nil {
		return nil, errors.Wrapf(err, "fetching %q", source)
	}
	f.Logger.DebugContext(ctx, "fetched workflow document", map[string]interface{}{"source": source})

	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, errors.Wrapf(err, "reading fetched document for %q", source)
	}
	return data, nil
}
