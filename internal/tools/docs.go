package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ifbars/s1bridge/internal/logx"
)

const defaultDocsTokens = 5000

// Seams for tests.
var (
	docsBaseURL = "https://context7.com/ifbars/s1api/llms.txt"
	docsClient  = &http.Client{Timeout: 30 * time.Second}
)

func registerDocsTools(s adder) {
	log := logx.Log.With().Str("component", "docs").Logger()

	s.AddTool(mcp.Tool{
		Name: "s1_search_s1api_docs",
		Description: "Search S1API documentation using Context7's llms.txt endpoint. " +
			"Retrieves relevant documentation snippets for a given topic.",
		InputSchema: objectSchema(map[string]any{
			"topic": map[string]any{
				"type":        "string",
				"description": "Search topic/keyword (e.g., 'Phone App Creation', 'NPC Creation', 'Quest System')",
			},
			"tokens": map[string]any{
				"type":        "integer",
				"description": "Maximum tokens to retrieve (default: 5000)",
				"default":     defaultDocsTokens,
			},
		}, "topic"),
	}, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topic, err := req.RequireString("topic")
		if err != nil {
			return mcp.NewToolResultError("topic is required"), nil
		}
		tokens := req.GetInt("tokens", defaultDocsTokens)
		if tokens < 1 {
			return mcp.NewToolResultError("tokens must be a positive integer"), nil
		}

		endpoint := fmt.Sprintf("%s?topic=%s&tokens=%d", docsBaseURL, url.QueryEscape(topic), tokens)
		log.Debug().Str("topic", topic).Int("tokens", tokens).Msg("fetching documentation")

		resp, err := docsClient.Get(endpoint)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("fetching documentation: %v", err)), nil
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return mcp.NewToolResultError(fmt.Sprintf(
				"documentation fetch failed: HTTP %d", resp.StatusCode)), nil
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reading documentation: %v", err)), nil
		}
		if strings.TrimSpace(string(body)) == "" {
			return mcp.NewToolResultText(fmt.Sprintf(
				"No documentation found for topic: %q. Try a different search term.", topic)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	})
}
