package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query; quoted phrases must match literally"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	WorkoutID     string  `json:"workout_id"`
	Title         string  `json:"title"`
	Summary       string  `json:"summary,omitempty"`
	Score         float64 `json:"score"`
	KeywordScore  float64 `json:"keyword_score"`
	SemanticScore float64 `json:"semantic_score"`
}

// RecommendInput is the input schema for the recommend tool.
type RecommendInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of recommendations (default 5)"`
}

// RecommendOutput is the output schema for the recommend tool.
type RecommendOutput struct {
	Workouts []RecommendationOutput `json:"workouts"`
	Count    int                    `json:"count"`
}

// RecommendationOutput represents a single ranked recommendation.
type RecommendationOutput struct {
	WorkoutID string   `json:"workout_id"`
	Title     string   `json:"title"`
	Score     float64  `json:"score"`
	Reasons   []string `json:"reasons,omitempty"`
}

// GenerateInput is the input schema for the generate tool.
type GenerateInput struct {
	Query string `json:"query" jsonschema:"what kind of workout to create"`
	Count int    `json:"count,omitempty" jsonschema:"how many candidates to create, 1 to 5 (default 3)"`
}

// GenerateOutput is the output schema for the generate tool.
type GenerateOutput struct {
	Candidates   []CandidateOutput `json:"candidates"`
	UsedFallback bool              `json:"used_fallback"`
	Note         string            `json:"note,omitempty"`
}

// CandidateOutput represents a single generated candidate.
type CandidateOutput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	Markdown    string `json:"markdown"`
	Explanation string `json:"explanation,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_workouts",
		Description: "Search the workout library with hybrid keyword and semantic matching",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommend_workouts",
		Description: "Rank workouts against the user's preferences and training history",
	}, s.handleRecommend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_workouts",
		Description: "Create new workout candidates for a request",
	}, s.handleGenerate)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	results, err := s.ports.Discovery.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			WorkoutID:     results[i].Document.ID,
			Title:         results[i].Document.Title,
			Summary:       results[i].Document.Summary,
			Score:         results[i].Score,
			KeywordScore:  results[i].KeywordScore,
			SemanticScore: results[i].SemanticScore,
		}
	}

	return nil, output, nil
}

// handleRecommend handles the recommend tool invocation.
func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	ranked, err := s.ports.Discovery.Recommend(ctx, limit)
	if err != nil {
		return nil, RecommendOutput{}, err
	}

	output := RecommendOutput{
		Workouts: make([]RecommendationOutput, len(ranked)),
		Count:    len(ranked),
	}
	for i := range ranked {
		reasons := make([]string, len(ranked[i].Reasons))
		for j, reason := range ranked[i].Reasons {
			reasons[j] = reason.Text
		}
		output.Workouts[i] = RecommendationOutput{
			WorkoutID: ranked[i].Document.ID,
			Title:     ranked[i].Document.Title,
			Score:     ranked[i].Score,
			Reasons:   reasons,
		}
	}

	return nil, output, nil
}

// handleGenerate handles the generate tool invocation.
func (s *Server) handleGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateInput,
) (*mcp.CallToolResult, GenerateOutput, error) {
	count := input.Count
	if count <= 0 {
		count = 3
	}

	batch, err := s.ports.Discovery.LoadMore(ctx, input.Query, count)
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	output := GenerateOutput{
		Candidates:   make([]CandidateOutput, len(batch.Candidates)),
		UsedFallback: batch.UsedFallback,
		Note:         batch.Note,
	}
	for i := range batch.Candidates {
		c := batch.Candidates[i]
		output.Candidates[i] = CandidateOutput{
			ID:          c.ID,
			Title:       c.Title,
			Summary:     c.Summary,
			Markdown:    c.Content.Markdown,
			Explanation: c.Explanation,
		}
	}

	return nil, output, nil
}
