// ABOUTME: Settings loading with global + project merge
// ABOUTME: JSON files under ~/.agentkit/ and .agentkit/; project wins

package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings holds the merged runtime configuration.
type Settings struct {
	Provider    string            `json:"provider,omitempty"`
	Model       string            `json:"model,omitempty"`
	BaseURL     string            `json:"base_url,omitempty"`
	Agent       string            `json:"agent,omitempty"`
	Store       string            `json:"store,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	MaxSteps    int               `json:"max_steps,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
}

// Load reads and merges global and project-local settings. Project
// values override global ones; missing files are not an error.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalSettingsFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global settings: %w", err)
	}

	project, err := loadFile(ProjectSettingsFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project settings: %w", err)
	}

	return merge(global, project), nil
}

func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays non-zero project values onto global settings.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.Provider != "" {
		result.Provider = project.Provider
	}
	if project.Model != "" {
		result.Model = project.Model
	}
	if project.BaseURL != "" {
		result.BaseURL = project.BaseURL
	}
	if project.Agent != "" {
		result.Agent = project.Agent
	}
	if project.Store != "" {
		result.Store = project.Store
	}
	if project.Temperature != 0 {
		result.Temperature = project.Temperature
	}
	if project.MaxTokens != 0 {
		result.MaxTokens = project.MaxTokens
	}
	if project.MaxSteps != 0 {
		result.MaxSteps = project.MaxSteps
	}

	if len(project.Env) > 0 {
		if result.Env == nil {
			result.Env = make(map[string]string, len(project.Env))
		}
		for k, v := range project.Env {
			result.Env[k] = v
		}
	}

	return &result
}

// ApplyEnv exports the env map into the process environment without
// clobbering variables the user already set.
func (s *Settings) ApplyEnv() {
	for k, v := range s.Env {
		if _, exists := os.LookupEnv(k); !exists {
			os.Setenv(k, v)
		}
	}
}
