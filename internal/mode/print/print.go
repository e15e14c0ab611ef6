// ABOUTME: Headless print mode with text, JSON, and stream-JSON formatters
// ABOUTME: Drains one agent run and renders its event stream to stdout

package print

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/litigantportal/agentkit/internal/agent"
)

// Config controls print mode output.
type Config struct {
	OutputFormat string // "text" (default), "json", "stream-json"
	Out          io.Writer
	ErrOut       io.Writer
}

// Run executes one agent run over prompt and renders the event stream.
// An empty prompt reads from stdin. Returns the error event's error, if
// the run failed.
func Run(ctx context.Context, cfg Config, a *agent.Agent, prompt string) error {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.ErrOut == nil {
		cfg.ErrOut = os.Stderr
	}
	if prompt == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		prompt = string(data)
	}

	f, err := newFormatter(cfg)
	if err != nil {
		return err
	}

	var runErr error
	for ev := range a.Run(ctx, prompt) {
		switch ev.Type {
		case agent.EventContentDelta:
			f.text(ev)
		case agent.EventToolCall:
			f.toolCall(ev)
		case agent.EventToolResponse:
			f.toolResponse(ev)
		case agent.EventDone:
			f.done(ev)
		case agent.EventError:
			f.fail(ev)
			runErr = ev.Err
		}
	}
	f.flush()
	return runErr
}

// formatter renders agent events. Terminal events arrive at most once.
type formatter interface {
	text(ev agent.Event)
	toolCall(ev agent.Event)
	toolResponse(ev agent.Event)
	done(ev agent.Event)
	fail(ev agent.Event)
	flush()
}

func newFormatter(cfg Config) (formatter, error) {
	switch cfg.OutputFormat {
	case "", "text":
		return newTextFormatter(cfg.Out, cfg.ErrOut), nil
	case "json":
		return &jsonFormatter{out: cfg.Out}, nil
	case "stream-json":
		return &streamJSONFormatter{out: cfg.Out}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (text, json, stream-json)", cfg.OutputFormat)
	}
}
