// ABOUTME: Agent definition registry with builtins and Markdown custom agents
// ABOUTME: Custom definitions load from .agentkit/agents/ and ~/.agentkit/agents/

package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/litigantportal/agentkit/internal/config"
	"github.com/litigantportal/agentkit/internal/log"
)

// Definition is a reusable agent configuration: prompt, model defaults,
// and the tool names to register.
type Definition struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Model        string   `yaml:"model"`
	Tools        []string `yaml:"tools"`
	MaxSteps     int      `yaml:"max_steps"`
	MaxTokens    int      `yaml:"max_tokens"`
	SystemPrompt string   `yaml:"-"`
}

const litigantSystemPrompt = `You are a helpful legal assistant for self-represented litigants. Provide clear, accurate information about legal procedures, court processes, and document preparation. Always recommend consulting with a licensed attorney for specific legal advice. Be empathetic and use plain language.

When the user provides a legal document, use it to:
- Reference specific deadlines and urge timely action when applicable
- Explain what the document means for the user in plain language
- Suggest concrete next steps based on the case type and deadlines
- Ask clarifying questions to better assist them

Format responses using markdown: **bold** for emphasis, bullet lists for steps, and clear paragraph breaks. Keep responses concise and well-structured.`

const summarizerSystemPrompt = `The user will submit a conversation history in their first message.
Summarize ONLY the questions the USER explicitly typed and their answers.

IMPORTANT RULES:
- Only include questions that appear after "USER:" in the conversation
- SKIP any document analysis (messages about "I've analyzed your document...")
- SKIP questions the assistant generated or suggested
- If the user asked no follow-up questions, respond with just: "No user questions asked."

Format (only for actual user questions):
Q: [The user's actual question]
A: [Specific answer with details: addresses, costs, times, deadlines. If no specifics, note that.]`

const extractorSystemPrompt = `You are a legal document analyzer. Extract structured information from the provided legal document text. Return a JSON object matching the provided schema.

Guidelines:
- If information is not found, use null for optional fields
- For dates, try to parse them into YYYY-MM-DD format when possible
- Focus on deadlines that require action from the document recipient
- The summary should be helpful and reassuring, not alarming
- Be conservative with confidence scores - lower if text is unclear or partially extracted`

// BuiltinDefinitions returns the agents shipped with the binary.
func BuiltinDefinitions() []Definition {
	return []Definition{
		{
			Name:         "litigant_assistant",
			Description:  "Legal assistant for self-represented litigants.",
			Tools:        []string{"webfetch", "save_note", "list_notes"},
			SystemPrompt: litigantSystemPrompt,
		},
		{
			Name:        "weather",
			Description: "Demo agent that checks the weather.",
			Tools:       []string{"get_weather"},
			MaxTokens:   1024,
			SystemPrompt: "You are a helpful assistant. If the user asks about the weather, " +
				"use the get_weather tool to get current conditions. Be concise.",
		},
		{
			Name:         "summarizer",
			Description:  "Summarizes a conversation into Q&A pairs.",
			MaxTokens:    1024,
			SystemPrompt: summarizerSystemPrompt,
		},
		{
			Name:         "extractor",
			Description:  "Extracts structured case data from legal documents.",
			MaxTokens:    2048,
			SystemPrompt: extractorSystemPrompt,
		},
	}
}

// DefRegistry resolves agent definitions by name. Built explicitly at
// startup and passed down; there is no package-level registry.
type DefRegistry struct {
	defs map[string]Definition
}

// NewDefRegistry creates a registry holding the given definitions.
// Later definitions with the same name override earlier ones, which is
// how custom agents shadow builtins.
func NewDefRegistry(defs ...Definition) *DefRegistry {
	r := &DefRegistry{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		r.defs[def.Name] = def
	}
	return r
}

// Register adds or replaces a definition.
func (r *DefRegistry) Register(def Definition) {
	r.defs[def.Name] = def
}

// Get resolves a definition by name. Unknown names produce an error
// carrying the closest matches.
func (r *DefRegistry) Get(name string) (Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		if suggestions := r.Suggest(name); len(suggestions) > 0 {
			return Definition{}, fmt.Errorf("unknown agent %q (did you mean %s?)", name, strings.Join(suggestions, ", "))
		}
		return Definition{}, fmt.Errorf("unknown agent %q", name)
	}
	return def, nil
}

// List returns all definitions sorted by name.
func (r *DefRegistry) List() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Suggest fuzzy-matches name against registered agents, best first.
func (r *DefRegistry) Suggest(name string) []string {
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)

	matches := fuzzy.Find(name, names)
	limit := 3
	if len(matches) < limit {
		limit = len(matches)
	}
	out := make([]string, 0, limit)
	for _, m := range matches[:limit] {
		out = append(out, m.Str)
	}
	return out
}

// LoadCustom reads Markdown agent definitions from the standard agent
// directories and registers them, later directories winning. Unreadable
// or malformed files are logged and skipped.
func (r *DefRegistry) LoadCustom(projectRoot string) {
	dirs := config.AgentDirs(projectRoot)
	// Global first so project-local definitions win.
	for i := len(dirs) - 1; i >= 0; i-- {
		r.loadDir(dirs[i])
	}
}

func (r *DefRegistry) loadDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("reading agent file %s: %v", path, err)
			continue
		}

		def, body, err := config.ParseFrontmatter[Definition](string(data))
		if err != nil {
			log.Warn("parsing agent file %s: %v", path, err)
			continue
		}
		if def.Name == "" {
			def.Name = strings.TrimSuffix(entry.Name(), ".md")
		}
		def.SystemPrompt = strings.TrimSpace(body)
		r.Register(def)
	}
}
