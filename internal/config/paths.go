// ABOUTME: Standard filesystem paths for agentkit configuration and data
// ABOUTME: ~/.agentkit/ for global state, .agentkit/ for project-local files

package config

import (
	"os"
	"path/filepath"
)

const dirName = ".agentkit"

// GlobalDir returns the user-global config directory (~/.agentkit/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", dirName)
	}
	return filepath.Join(home, dirName)
}

// ProjectDir returns the project-local config directory.
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, dirName)
}

// ConversationsDir returns the conversation log directory.
func ConversationsDir() string {
	return filepath.Join(GlobalDir(), "conversations")
}

// DatabaseFile returns the SQLite conversation database path.
func DatabaseFile() string {
	return filepath.Join(GlobalDir(), "conversations.db")
}

// GlobalSettingsFile returns the global settings path.
func GlobalSettingsFile() string {
	return filepath.Join(GlobalDir(), "settings.json")
}

// ProjectSettingsFile returns the project-local settings path.
func ProjectSettingsFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "settings.json")
}

// AgentDirs returns agent definition directories in resolution order,
// project-local first.
func AgentDirs(projectRoot string) []string {
	return []string{
		filepath.Join(ProjectDir(projectRoot), "agents"),
		filepath.Join(GlobalDir(), "agents"),
	}
}

// NotesDir returns the saved-notes directory.
func NotesDir() string {
	return filepath.Join(GlobalDir(), "notes")
}

// EnsureDir creates path and parents. 0o700 because conversation logs
// can hold sensitive case material.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
