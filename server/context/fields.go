// Package context defines the request-scoped fields that ride along on a
// context.Context and get stitched into every log line.
package context

import (
	"context"
)

type Key string

func (k Key) String() string {
	return string(k)
}

const (
	RequestIDKey Key = "request-id"
	SourceKey    Key = "source"
	WorkflowKey  Key = "workflow"
)

// fieldKeys are the keys the logger knows how to extract.
var fieldKeys = []Key{RequestIDKey, SourceKey, WorkflowKey}

// ExtractFields pulls all known field keys out of ctx for structured logging.
func ExtractFields(ctx context.Context) map[string]interface{} {
	fields := make(map[string]interface{})
	for _, key := range fieldKeys {
		if v := ctx.Value(key); v != nil {
			fields[key.String()] = v
		}
	}
	return fields
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

func WithWorkflow(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, WorkflowKey, name)
}
