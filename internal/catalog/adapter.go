package catalog

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Validator is an interface for request types that support validation.
type Validator interface {
	Validate() error
}

// ExecutorFunc executes a tool with a typed request.
type ExecutorFunc[Req any] func(ctx context.Context, req Req) (string, error)

// TypedTool wraps a typed executor function as a Tool. It centralizes
// argument decoding (mapstructure), optional request validation, and error
// wrapping, so concrete providers only write typed handlers.
type TypedTool[Req any] struct {
	desc     Descriptor
	executor ExecutorFunc[Req]
}

// NewTypedTool creates a Tool from a descriptor and a typed executor.
func NewTypedTool[Req any](desc Descriptor, executor ExecutorFunc[Req]) *TypedTool[Req] {
	return &TypedTool[Req]{desc: desc, executor: executor}
}

// Descriptor implements Tool.
func (t *TypedTool[Req]) Descriptor() Descriptor {
	return t.desc
}

// Execute implements Tool. Arguments are decoded into the request type; if
// the request implements Validator it is validated before execution.
func (t *TypedTool[Req]) Execute(ctx context.Context, args map[string]any) (string, error) {
	var req Req

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return "", fmt.Errorf("decoder setup failed: %w", err)
	}
	if err := decoder.Decode(args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return "", fmt.Errorf("%s validation failed: %w", t.desc.Name, err)
		}
	}

	return t.executor(ctx, req)
}
