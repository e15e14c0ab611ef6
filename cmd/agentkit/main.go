// ABOUTME: CLI entry point for agentkit
// ABOUTME: Parses flags, loads config, registers providers, dispatches to mode

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/litigantportal/agentkit/internal/agent"
	"github.com/litigantportal/agentkit/internal/config"
	aklog "github.com/litigantportal/agentkit/internal/log"
	"github.com/litigantportal/agentkit/internal/mode/interactive"
	"github.com/litigantportal/agentkit/internal/mode/print"
	"github.com/litigantportal/agentkit/internal/session"
	"github.com/litigantportal/agentkit/internal/tools"
	"github.com/litigantportal/agentkit/pkg/llm"
	"github.com/litigantportal/agentkit/pkg/llm/provider/groq"
	"github.com/litigantportal/agentkit/pkg/llm/provider/ollama"
	"github.com/litigantportal/agentkit/pkg/llm/provider/openai"
)

var (
	version = "dev"
	commit  = "unknown"
)

const (
	defaultProvider = "openai"
	defaultModel    = "gpt-4o-mini"
	defaultAgent    = "litigant_assistant"
)

func main() {
	args := parseFlags()

	if args.version {
		fmt.Printf("agentkit %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run performs the full initialization sequence and dispatches to the
// selected mode.
func run(args cliArgs) error {
	if args.verbose {
		aklog.SetLevel(aklog.LevelDebug)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg, args)
	cfg.ApplyEnv()

	registry := newProviderRegistry()
	provider, err := registry.New(cfg.Provider, llm.Config{BaseURL: cfg.BaseURL})
	if err != nil {
		return err
	}

	store, err := session.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	if args.list {
		return listConversations(store)
	}

	defs := agent.NewDefRegistry(agent.BuiltinDefinitions()...)
	defs.LoadCustom(cwd)

	if args.ping {
		return pingProvider(provider, cfg.Model)
	}

	def, err := defs.Get(cfg.Agent)
	if err != nil {
		return err
	}

	convID := args.resume
	if args.cont {
		convID, err = latestConversation(store)
		if err != nil {
			return err
		}
	}

	ag, err := assembleAgent(def, provider, cfg, store, convID)
	if err != nil {
		return err
	}

	promptText := args.prompt
	if promptText == "" && len(args.remaining()) > 0 {
		promptText = strings.Join(args.remaining(), " ")
	}

	if promptText != "" || args.print || convID != "" {
		return print.Run(context.Background(), print.Config{
			OutputFormat: args.outputFormat,
		}, ag, promptText)
	}

	return interactive.Run(interactive.Deps{
		Provider:  provider,
		Model:     cfg.Model,
		Defs:      defs,
		AgentName: cfg.Agent,
		Store:     store,
		MaxSteps:  cfg.MaxSteps,
		Version:   version,
	})
}

// newProviderRegistry registers the built-in providers.
func newProviderRegistry() *llm.Registry {
	r := llm.NewRegistry()
	r.Register("openai", func(cfg llm.Config) llm.Provider { return openai.New(cfg) })
	r.Register("groq", func(cfg llm.Config) llm.Provider { return groq.New(cfg) })
	r.Register("ollama", func(cfg llm.Config) llm.Provider { return ollama.New(cfg) })
	return r
}

// applyFlagOverrides layers CLI flags over loaded settings and fills in
// defaults for anything still unset.
func applyFlagOverrides(cfg *config.Settings, args cliArgs) {
	if args.provider != "" {
		cfg.Provider = args.provider
	}
	if args.model != "" {
		cfg.Model = args.model
	}
	if args.baseURL != "" {
		cfg.BaseURL = args.baseURL
	}
	if args.agent != "" {
		cfg.Agent = args.agent
	}
	if args.store != "" {
		cfg.Store = args.store
	}
	if args.maxSteps > 0 {
		cfg.MaxSteps = args.maxSteps
	}

	if cfg.Provider == "" {
		cfg.Provider = defaultProvider
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Agent == "" {
		cfg.Agent = defaultAgent
	}
}

// assembleAgent builds or resumes an agent from a definition.
func assembleAgent(def agent.Definition, provider llm.Provider, cfg *config.Settings, store session.Store, convID string) (*agent.Agent, error) {
	toolSet, err := tools.BuildToolSet(def.Tools)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if def.Model != "" {
		model = def.Model
	}
	maxSteps := cfg.MaxSteps
	if maxSteps == 0 {
		maxSteps = def.MaxSteps
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = def.MaxTokens
	}

	agentCfg := agent.Config{
		Provider:       provider,
		Model:          model,
		Tools:          toolSet,
		MaxSteps:       maxSteps,
		MaxTokens:      maxTokens,
		Temperature:    cfg.Temperature,
		Store:          store,
		ConversationID: convID,
	}

	if convID != "" {
		return agent.Resume(agentCfg)
	}

	if def.SystemPrompt != "" {
		agentCfg.Messages = []llm.Message{llm.SystemMessage(def.SystemPrompt)}
	}
	return agent.New(agentCfg)
}

// listConversations prints stored conversations, newest first.
func listConversations(store session.Store) error {
	infos, err := store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no stored conversations")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %s  %d messages\n",
			info.ID, info.Started.Format("2006-01-02 15:04"), info.Messages)
	}
	return nil
}

// latestConversation returns the most recent conversation ID.
func latestConversation(store session.Store) (string, error) {
	infos, err := store.List()
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", fmt.Errorf("no conversations to continue")
	}
	return infos[0].ID, nil
}

// pingProvider runs a one-token completion to verify connectivity.
func pingProvider(provider llm.Provider, model string) error {
	ag, err := agent.New(agent.Config{Provider: provider, Model: model})
	if err != nil {
		return err
	}
	if err := ag.Ping(context.Background()); err != nil {
		return fmt.Errorf("ping %s: %w", provider.Name(), err)
	}
	fmt.Printf("%s ok\n", provider.Name())
	return nil
}
