package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/skillweaver/skillweaver/internal/schema"
)

const (
	webUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/537.36"
	maxRedirects = 5
)

// validateURL checks that url is http(s) with a valid domain.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("only http/https allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing domain in URL")
	}
	return nil
}

// ---------------------------------------------------------------------------
// WebSearchTool
// ---------------------------------------------------------------------------

// WebSearchTool searches the web using the Brave Search API.
type WebSearchTool struct {
	apiKey     string
	maxResults int
	httpClient *http.Client
}

// NewWebSearchTool creates a WebSearchTool.
// apiKey is BRAVE_API_KEY; maxResults defaults to 5.
func NewWebSearchTool(apiKey string, maxResults int) *WebSearchTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebSearchTool{
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *WebSearchTool) Name() string { return "web_search" }
func (t *WebSearchTool) Description() string {
	return "Search the web. Returns titles, URLs, and snippets."
}
func (t *WebSearchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Search query"
			},
			"count": {
				"type": "integer",
				"description": "Results (1-10)",
				"minimum": 1,
				"maximum": 10
			}
		},
		"required": ["query"]
	}`)
}

func (t *WebSearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	if t.apiKey == "" {
		return schema.Failure("not_configured", "BRAVE_API_KEY not configured").JSON(), nil
	}
	query, _ := params["query"].(string)
	if query == "" {
		return schema.Failure("invalid_params", "query is required").JSON(), nil
	}

	n := t.maxResults
	if countVal, ok := params["count"]; ok {
		switch v := countVal.(type) {
		case float64:
			n = int(v)
		case int:
			n = v
		}
	}
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://api.search.brave.com/res/v1/web/search", nil)
	if err != nil {
		return schema.Failure("request_error", err.Error()).JSON(), nil
	}
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("count", fmt.Sprintf("%d", n))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return schema.Failure("request_error", err.Error()).JSON(), nil
	}
	defer resp.Body.Close()

	var data struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return schema.Failure("parse_error", err.Error()).JSON(), nil
	}

	results := data.Web.Results
	if len(results) == 0 {
		return schema.ToolResult{Success: true, Result: "No results for: " + query}.JSON(), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Results for: %s\n\n", query))
	for i, item := range results {
		if i >= n {
			break
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n   %s", i+1, item.Title, item.URL))
		if item.Description != "" {
			sb.WriteString("\n   " + item.Description)
		}
		sb.WriteString("\n")
	}
	return schema.ToolResult{
		Success:  true,
		Result:   sb.String(),
		Metadata: map[string]any{"count": len(results)},
	}.JSON(), nil
}

// ---------------------------------------------------------------------------
// WebFetchTool
// ---------------------------------------------------------------------------

// WebFetchTool fetches a URL and extracts readable content.
type WebFetchTool struct {
	maxChars   int
	httpClient *http.Client
}

// NewWebFetchTool creates a WebFetchTool. maxChars defaults to 50000.
func NewWebFetchTool(maxChars int) *WebFetchTool {
	if maxChars <= 0 {
		maxChars = 50000
	}
	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return &WebFetchTool{maxChars: maxChars, httpClient: client}
}

func (t *WebFetchTool) Name() string { return "web_fetch" }
func (t *WebFetchTool) Description() string {
	return "Fetch URL and extract readable content (HTML → markdown/text)."
}
func (t *WebFetchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {
				"type": "string",
				"description": "URL to fetch"
			},
			"extractMode": {
				"type": "string",
				"enum": ["markdown", "text"],
				"default": "markdown"
			},
			"maxChars": {
				"type": "integer",
				"minimum": 100
			}
		},
		"required": ["url"]
	}`)
}

func (t *WebFetchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	rawURL, _ := params["url"].(string)
	if rawURL == "" {
		return schema.Failure("invalid_params", "url is required").JSON(), nil
	}

	if err := validateURL(rawURL); err != nil {
		return schema.Failure("invalid_url", err.Error()).JSON(), nil
	}

	extractMode := "markdown"
	if m, ok := params["extractMode"].(string); ok && m != "" {
		extractMode = m
	}
	maxChars := t.maxChars
	if mc, ok := params["maxChars"]; ok {
		switch v := mc.(type) {
		case float64:
			maxChars = int(v)
		case int:
			maxChars = v
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return schema.Failure("request_error", err.Error()).JSON(), nil
	}
	req.Header.Set("User-Agent", webUserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return schema.Failure("request_error", err.Error()).JSON(), nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.Failure("request_error", err.Error()).JSON(), nil
	}

	ctype := resp.Header.Get("Content-Type")
	finalURL := resp.Request.URL.String()

	var text, extractor string

	switch {
	case strings.Contains(ctype, "application/json"):
		var jsonData any
		if err := json.Unmarshal(bodyBytes, &jsonData); err == nil {
			formatted, _ := json.MarshalIndent(jsonData, "", "  ")
			text = string(formatted)
		} else {
			text = string(bodyBytes)
		}
		extractor = "json"

	case strings.Contains(ctype, "text/html") || isHTMLPrefix(bodyBytes):
		parsedURL, _ := url.Parse(rawURL)
		article, err := readability.FromReader(bytes.NewReader(bodyBytes), parsedURL)
		if err == nil {
			if extractMode == "markdown" {
				text = htmlToMarkdown(article.Content)
				extractor = "readability+markdown"
			} else {
				text = article.TextContent
				extractor = "readability"
			}
		} else {
			text = stripTags(string(bodyBytes))
			extractor = "strip"
		}

	default:
		text = string(bodyBytes)
		extractor = "raw"
	}

	text = strings.TrimSpace(text)
	truncated := false
	if len(text) > maxChars {
		text = text[:maxChars]
		truncated = true
	}

	return schema.ToolResult{
		Success: true,
		Result:  text,
		Metadata: map[string]any{
			"url":       finalURL,
			"status":    resp.StatusCode,
			"extractor": extractor,
			"truncated": truncated,
		},
	}.JSON(), nil
}

func isHTMLPrefix(body []byte) bool {
	prefix := strings.ToLower(string(body[:min(len(body), 256)]))
	return strings.Contains(prefix, "<!doctype html") || strings.Contains(prefix, "<html")
}

var (
	reTag        = regexp.MustCompile(`<[^>]+>`)
	reScriptAlt  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	reStyleAlt   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
	reHeading    = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	reLink       = regexp.MustCompile(`(?is)<a[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	reParagraph  = regexp.MustCompile(`(?is)</(p|div|li|tr|br)>`)
)

// stripTags removes markup for pages that defeat readability extraction.
func stripTags(html string) string {
	html = reScriptAlt.ReplaceAllString(html, "")
	html = reStyleAlt.ReplaceAllString(html, "")
	html = reTag.ReplaceAllString(html, " ")
	html = strings.Join(strings.Fields(html), " ")
	return html
}

// htmlToMarkdown is a light conversion of readability output: headings,
// links, and paragraph breaks. Anything fancier goes through as plain text.
func htmlToMarkdown(html string) string {
	html = reScriptAlt.ReplaceAllString(html, "")
	html = reStyleAlt.ReplaceAllString(html, "")
	html = reHeading.ReplaceAllStringFunc(html, func(m string) string {
		sub := reHeading.FindStringSubmatch(m)
		level := int(sub[1][0] - '0')
		return "\n" + strings.Repeat("#", level) + " " + stripTags(sub[2]) + "\n"
	})
	html = reLink.ReplaceAllString(html, "[$2]($1)")
	html = reParagraph.ReplaceAllString(html, "\n")
	html = reTag.ReplaceAllString(html, "")
	html = reBlankLines.ReplaceAllString(html, "\n\n")
	return html
}
