// ABOUTME: The three print-mode formatters: text, collected JSON, and stream-JSON
// ABOUTME: Text mode renders markdown through glamour when stdout is a terminal

package print

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/litigantportal/agentkit/internal/agent"
)

// textFormatter streams deltas as they arrive. On a terminal the full
// response is re-rendered as markdown once the run finishes.
type textFormatter struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	buf    strings.Builder
}

func newTextFormatter(out, errOut io.Writer) *textFormatter {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return &textFormatter{out: out, errOut: errOut, isTTY: isTTY}
}

func (f *textFormatter) text(ev agent.Event) {
	f.buf.WriteString(ev.Content)
	if !f.isTTY {
		fmt.Fprint(f.out, ev.Content)
	}
}

func (f *textFormatter) toolCall(ev agent.Event) {
	fmt.Fprintf(f.errOut, "[tool: %s]\n", ev.Name)
}

func (f *textFormatter) toolResponse(agent.Event) {}

func (f *textFormatter) done(ev agent.Event) {
	if ev.Truncated {
		fmt.Fprintln(f.errOut, "[stopped: step budget exhausted]")
	}
}

func (f *textFormatter) fail(ev agent.Event) {
	fmt.Fprintf(f.errOut, "error: %v\n", ev.Err)
}

func (f *textFormatter) flush() {
	if !f.isTTY {
		fmt.Fprintln(f.out)
		return
	}
	rendered, err := glamour.Render(f.buf.String(), "auto")
	if err != nil {
		fmt.Fprintln(f.out, f.buf.String())
		return
	}
	fmt.Fprint(f.out, rendered)
}

// jsonFormatter collects the whole run into a single JSON object.
type jsonFormatter struct {
	out       io.Writer
	buf       strings.Builder
	toolCalls []collectedCall
	errMsg    string
	truncated bool
}

type collectedCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
	Data map[string]any `json:"data,omitempty"`
}

type collectedOutput struct {
	Text      string          `json:"text"`
	ToolCalls []collectedCall `json:"tool_calls,omitempty"`
	Truncated bool            `json:"truncated,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func (f *jsonFormatter) text(ev agent.Event) { f.buf.WriteString(ev.Content) }

func (f *jsonFormatter) toolCall(ev agent.Event) {
	args := ev.Args
	if args == nil {
		args = map[string]any{}
	}
	f.toolCalls = append(f.toolCalls, collectedCall{ID: ev.ID, Name: ev.Name, Args: args})
}

func (f *jsonFormatter) toolResponse(ev agent.Event) {
	for i := len(f.toolCalls) - 1; i >= 0; i-- {
		if f.toolCalls[i].ID == ev.ID {
			f.toolCalls[i].Data = ev.Data
			return
		}
	}
}

func (f *jsonFormatter) done(ev agent.Event) { f.truncated = ev.Truncated }
func (f *jsonFormatter) fail(ev agent.Event) { f.errMsg = ev.Err.Error() }

func (f *jsonFormatter) flush() {
	data, _ := json.Marshal(collectedOutput{
		Text:      f.buf.String(),
		ToolCalls: f.toolCalls,
		Truncated: f.truncated,
		Error:     f.errMsg,
	})
	fmt.Fprintln(f.out, string(data))
}

// streamJSONFormatter writes each event as one JSON line in its wire
// shape.
type streamJSONFormatter struct {
	out io.Writer
}

func (f *streamJSONFormatter) emit(ev agent.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintln(f.out, string(data))
}

func (f *streamJSONFormatter) text(ev agent.Event)         { f.emit(ev) }
func (f *streamJSONFormatter) toolCall(ev agent.Event)     { f.emit(ev) }
func (f *streamJSONFormatter) toolResponse(ev agent.Event) { f.emit(ev) }
func (f *streamJSONFormatter) done(ev agent.Event)         { f.emit(ev) }
func (f *streamJSONFormatter) fail(ev agent.Event)         { f.emit(ev) }
func (f *streamJSONFormatter) flush()                      {}
