// ABOUTME: Generic YAML frontmatter parser for Markdown agent definitions
// ABOUTME: Handles CRLF input, empty frontmatter, and missing delimiters

package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fmDelim = "---"

// ParseFrontmatter extracts YAML frontmatter from Markdown content into
// T and returns the remaining body. Content without frontmatter comes
// back untouched with a zero T. An opening delimiter without a closing
// one is an error.
func ParseFrontmatter[T any](content string) (T, string, error) {
	var zero T

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, fmDelim+"\n") {
		return zero, content, nil
	}

	rest := normalized[len(fmDelim)+1:]

	var yamlSrc, after string
	switch {
	case strings.HasPrefix(rest, fmDelim+"\n") || rest == fmDelim:
		after = rest[len(fmDelim):]
	default:
		before, tail, ok := strings.Cut(rest, "\n"+fmDelim)
		if !ok {
			return zero, "", errors.New("unterminated frontmatter: missing closing ---")
		}
		yamlSrc, after = before, tail
	}

	body := strings.TrimPrefix(after, "\n")

	var result T
	if err := yaml.Unmarshal([]byte(yamlSrc), &result); err != nil {
		return zero, "", fmt.Errorf("parse frontmatter YAML: %w", err)
	}
	return result, body, nil
}
