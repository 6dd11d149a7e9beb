// Package mcpsrv exposes movie search and trending as MCP tools.
package mcpsrv

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abelbrown/reelfind/internal/search"
	"github.com/abelbrown/reelfind/internal/tmdb"
	"github.com/abelbrown/reelfind/internal/trending"
)

// Service is the subset of *search.Service the tools call.
type Service interface {
	Fetch(ctx context.Context, query string) search.Outcome
	Trending(ctx context.Context, limit int) ([]trending.Entry, error)
}

type moviesSearchArgs struct {
	Query string `json:"query" jsonschema:"Movie title to search for; empty lists popular movies"`
	Limit int    `json:"limit,omitempty" jsonschema:"Optional maximum number of movies"`
}

type trendingListArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Optional number of entries (default 5, max 50)"`
}

type moviesSearchOutput struct {
	Query string       `json:"query"`
	Total int          `json:"total"`
	Items []tmdb.Movie `json:"items"`
}

type trendingListOutput struct {
	Total int              `json:"total"`
	Items []trending.Entry `json:"items"`
}

// NewServer registers the tools on a new MCP server.
func NewServer(svc Service, version string) *mcp.Server {
	if strings.TrimSpace(version) == "" {
		version = "dev"
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "reelfind", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "movies_search",
		Description: "Search TMDB for movies by title. Non-empty searches with results count toward trending.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args moviesSearchArgs) (*mcp.CallToolResult, moviesSearchOutput, error) {
		return moviesSearchHandler(ctx, req, args, svc)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trending_list",
		Description: "List the most searched movie queries, highest count first.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args trendingListArgs) (*mcp.CallToolResult, trendingListOutput, error) {
		return trendingListHandler(ctx, req, args, svc)
	})

	return server
}

func moviesSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, args moviesSearchArgs, svc Service) (*mcp.CallToolResult, moviesSearchOutput, error) {
	query := strings.TrimSpace(args.Query)
	out := svc.Fetch(ctx, query)
	if out.ErrorMessage != "" {
		return errorToolResult(out.ErrorMessage), moviesSearchOutput{}, nil
	}

	movies := out.Movies
	if args.Limit > 0 && args.Limit < len(movies) {
		movies = movies[:args.Limit]
	}
	return nil, moviesSearchOutput{
		Query: query,
		Total: len(movies),
		Items: movies,
	}, nil
}

func trendingListHandler(ctx context.Context, _ *mcp.CallToolRequest, args trendingListArgs, svc Service) (*mcp.CallToolResult, trendingListOutput, error) {
	if args.Limit < 0 || args.Limit > trending.MaxLimit {
		return errorToolResult("limit must be between 1 and 50"), trendingListOutput{}, nil
	}
	entries, err := svc.Trending(ctx, args.Limit)
	if err != nil {
		return errorToolResult("load trending failed"), trendingListOutput{}, nil
	}
	if entries == nil {
		entries = []trending.Entry{}
	}
	return nil, trendingListOutput{Total: len(entries), Items: entries}, nil
}

func errorToolResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
