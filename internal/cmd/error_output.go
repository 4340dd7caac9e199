package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/blocks"
	"github.com/salmonumbrella/notion-cli/internal/notebook"
	"github.com/salmonumbrella/notion-cli/internal/output"
	"github.com/salmonumbrella/notion-cli/internal/property"
)

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid --error-format %q (expected auto|text|json|yaml)", format)
	}
}

func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format == "" || format == "auto" {
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderrFromContext(ctx), err)
}

// errorKinds maps typed errors to envelope type and category. The first
// match wins.
var errorKinds = []struct {
	match    func(error) bool
	typ      string
	category string
}{
	{match: isType[api.AuthenticationError], typ: "auth", category: "user"},
	{match: isType[api.ValidationError], typ: "validation", category: "user"},
	{match: isType[api.NotFoundError], typ: "not_found", category: "user"},
	{match: isType[api.RateLimitError], typ: "rate_limit", category: "system"},
	{match: isType[api.ServerError], typ: "server", category: "system"},
	{match: isErr(blocks.ErrLeafWithChildren), typ: "markdown", category: "user"},
	{match: isErr(blocks.ErrUnknownKind), typ: "markdown", category: "system"},
	{match: isErr(property.ErrInvalidProperty), typ: "validation", category: "user"},
	{match: isErr(notebook.ErrInvalidNotebook), typ: "validation", category: "user"},
}

func isType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func isErr(sentinel error) func(error) bool {
	return func(err error) bool { return errors.Is(err, sentinel) }
}

func buildErrorEnvelope(err error) map[string]interface{} {
	errMap := map[string]interface{}{
		"message":  err.Error(),
		"type":     "error",
		"category": "system",
	}
	for _, kind := range errorKinds {
		if kind.match(err) {
			errMap["type"] = kind.typ
			errMap["category"] = kind.category
			break
		}
	}

	var rateErr api.RateLimitError
	if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
		errMap["retry_after_seconds"] = rateErr.RetryAfter.Seconds()
	}
	var serverErr api.ServerError
	if errors.As(err, &serverErr) && serverErr.Status > 0 {
		errMap["status"] = serverErr.Status
	}

	return map[string]interface{}{"error": errMap}
}
