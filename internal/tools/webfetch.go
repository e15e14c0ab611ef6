// ABOUTME: Webfetch tool: fetches a URL and extracts readable text as markdown
// ABOUTME: Uses golang.org/x/net/html; upgrades http to https except for localhost

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/litigantportal/agentkit/internal/agent"
)

// NewWebFetchTool returns a tool that fetches a page and hands the
// model its readable content.
func NewWebFetchTool() *agent.Tool {
	return &agent.Tool{
		Name:        "webfetch",
		Description: "Fetch a URL and extract its readable content as markdown. Useful for court websites and legal resources.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"required": ["url"],
			"properties": {
				"url": {"type": "string", "description": "URL to fetch"}
			}
		}`),
		Execute: executeWebFetch,
	}
}

func executeWebFetch(ctx context.Context, _ *agent.Agent, args map[string]any) (*agent.ToolOutput, error) {
	url, err := requireStringParam(args, "url")
	if err != nil {
		return nil, err
	}

	// Plain http goes to https unless it's a local address.
	if strings.HasPrefix(url, "http://") && !strings.Contains(url, "localhost") && !strings.Contains(url, "127.0.0.1") {
		url = "https://" + strings.TrimPrefix(url, "http://")
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "agentkit/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	content := truncateOutput(htmlToMarkdown(string(body)), maxToolOutput)
	return agent.Text(content), nil
}

// htmlToMarkdown extracts readable text from HTML, keeping basic
// structure as markdown. Unparseable input comes back raw.
func htmlToMarkdown(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	var b strings.Builder
	extractReadable(doc, &b, false)
	return strings.TrimSpace(b.String())
}

func extractReadable(n *html.Node, b *strings.Builder, inPre bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "nav", "footer", "header", "iframe", "noscript":
			return
		case "h1":
			b.WriteString("\n# ")
		case "h2":
			b.WriteString("\n## ")
		case "h3":
			b.WriteString("\n### ")
		case "h4", "h5", "h6":
			b.WriteString("\n#### ")
		case "p", "div", "section", "article":
			b.WriteString("\n\n")
		case "br":
			b.WriteString("\n")
		case "li":
			b.WriteString("\n- ")
		case "pre":
			b.WriteString("\n```\n")
			inPre = true
		case "code":
			if !inPre {
				b.WriteString("`")
			}
		case "a":
			if href := getAttr(n, "href"); href != "" {
				if text := extractText(n); text != "" {
					fmt.Fprintf(b, "[%s](%s)", text, href)
					return
				}
			}
		case "strong", "b":
			b.WriteString("**")
		case "em", "i":
			b.WriteString("*")
		}
	}

	if n.Type == html.TextNode {
		text := n.Data
		if !inPre {
			text = strings.Join(strings.Fields(text), " ")
		}
		if text != "" && text != " " {
			b.WriteString(text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractReadable(c, b, inPre)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "pre":
			b.WriteString("\n```\n")
		case "code":
			if !inPre {
				b.WriteString("`")
			}
		case "strong", "b":
			b.WriteString("**")
		case "em", "i":
			b.WriteString("*")
		case "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n")
		}
	}
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
