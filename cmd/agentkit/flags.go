// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports -p, --agent, --provider, --model, --resume, --list, --ping

package main

import "flag"

type cliArgs struct {
	prompt       string
	print        bool
	outputFormat string
	agent        string
	provider     string
	model        string
	baseURL      string
	store        string
	maxSteps     int
	resume       string
	cont         bool
	list         bool
	ping         bool
	verbose      bool
	version      bool
}

func parseFlags() cliArgs {
	var args cliArgs

	flag.StringVar(&args.prompt, "p", "", "Run one prompt non-interactively and exit")
	flag.BoolVar(&args.print, "print", false, "Non-interactive print mode (prompt from args or stdin)")
	flag.StringVar(&args.outputFormat, "output-format", "", "Print mode output: text, json, or stream-json")
	flag.StringVar(&args.agent, "agent", "", "Agent definition to run (see .agentkit/agents/)")
	flag.StringVar(&args.provider, "provider", "", "LLM provider: openai, groq, or ollama")
	flag.StringVar(&args.model, "model", "", "Model name (e.g. gpt-4o-mini)")
	flag.StringVar(&args.baseURL, "base-url", "", "Custom API base URL")
	flag.StringVar(&args.store, "store", "", "Conversation store: jsonl, sqlite, or memory")
	flag.IntVar(&args.maxSteps, "max-steps", 0, "Step budget per run (0 = default)")
	flag.StringVar(&args.resume, "resume", "", "Resume the conversation with this ID")
	flag.BoolVar(&args.cont, "continue", false, "Resume the most recent conversation")
	flag.BoolVar(&args.list, "list", false, "List stored conversations and exit")
	flag.BoolVar(&args.ping, "ping", false, "Check provider connectivity and exit")
	flag.BoolVar(&args.verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&args.version, "version", false, "Show version and exit")

	flag.Parse()
	return args
}

// remaining returns the non-flag command-line arguments.
func (a cliArgs) remaining() []string {
	return flag.Args()
}
