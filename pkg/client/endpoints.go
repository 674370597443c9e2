package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// RiskClient covers the country risk endpoints.
type RiskClient struct {
	client *Client
}

// Analyze returns the risk tier and predicted saving for country.
func (r *RiskClient) Analyze(ctx context.Context, country string) (*RiskResult, error) {
	var out RiskResult
	if err := r.client.post(ctx, "/api/v1/analyze", map[string]string{"country": country}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Countries lists every analysable country.
func (r *RiskClient) Countries(ctx context.Context) ([]string, error) {
	var out struct {
		Countries []string `json:"countries"`
	}
	if err := r.client.get(ctx, "/api/v1/countries", &out); err != nil {
		return nil, err
	}
	return out.Countries, nil
}

// FeatureImportance returns the regressor weights, highest first.
func (r *RiskClient) FeatureImportance(ctx context.Context) ([]FeatureImportance, error) {
	var out struct {
		FeatureImportance []FeatureImportance `json:"feature_importance"`
	}
	if err := r.client.get(ctx, "/api/v1/feature-importance", &out); err != nil {
		return nil, err
	}
	return out.FeatureImportance, nil
}

// Summary describes the fitted pipeline.
func (r *RiskClient) Summary(ctx context.Context) (*RiskSummary, error) {
	var out RiskSummary
	if err := r.client.get(ctx, "/api/v1/risk/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TextClient covers the chatbot and text analysis endpoints.
type TextClient struct {
	client *Client
}

// Chat asks the compliance assistant. contextText may be empty.
func (t *TextClient) Chat(ctx context.Context, query, contextText string) (string, error) {
	req := struct {
		UserQuery string `json:"user_query"`
		Context   string `json:"context,omitempty"`
	}{query, contextText}
	var out struct {
		Response string `json:"response"`
	}
	if err := t.client.post(ctx, "/api/v1/chat", req, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// KeyPhrases returns the most frequent noun and verb phrases of text.
func (t *TextClient) KeyPhrases(ctx context.Context, text string) ([]Phrase, error) {
	var out struct {
		KeyPhrases []Phrase `json:"key_phrases"`
	}
	if err := t.client.post(ctx, "/api/v1/extract-key-phrases", map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return out.KeyPhrases, nil
}

// Summarize returns an extractive summary of text.
func (t *TextClient) Summarize(ctx context.Context, text string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := t.client.post(ctx, "/api/v1/summarize-text", map[string]string{"text": text}, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

// Insights returns the organisations, places, amounts, laws and dates in text.
func (t *TextClient) Insights(ctx context.Context, text string) ([]Insight, error) {
	var out struct {
		Insights []Insight `json:"insights"`
	}
	if err := t.client.post(ctx, "/api/v1/extract-insights", map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return out.Insights, nil
}

// GraphClient covers the knowledge graph endpoints.
type GraphClient struct {
	client *Client
}

// AddEntities upserts entities and returns the server's acknowledgement.
func (g *GraphClient) AddEntities(ctx context.Context, entities []Entity) (string, error) {
	return g.message(ctx, http.MethodPost, "/api/v1/graph/entities", entities)
}

// AddRelations adds relations. Nothing is applied if any endpoint is unknown.
func (g *GraphClient) AddRelations(ctx context.Context, relations []Relation) (string, error) {
	return g.message(ctx, http.MethodPost, "/api/v1/graph/relations", relations)
}

// BulkUpload adds entities, then relations.
func (g *GraphClient) BulkUpload(ctx context.Context, data GraphData) (string, error) {
	return g.message(ctx, http.MethodPost, "/api/v1/graph/bulk", data)
}

// Clear removes every node and edge.
func (g *GraphClient) Clear(ctx context.Context) (string, error) {
	return g.message(ctx, http.MethodDelete, "/api/v1/graph", nil)
}

// Get returns the whole graph.
func (g *GraphClient) Get(ctx context.Context) (*Graph, error) {
	var out Graph
	if err := g.client.get(ctx, "/api/v1/graph", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Image returns the rendered graph.
func (g *GraphClient) Image(ctx context.Context) (*GraphImage, error) {
	raw, err := g.client.doRaw(ctx, http.MethodGet, "/api/v1/graph/image", nil)
	if err != nil {
		return nil, err
	}
	ct := raw.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}
	return &GraphImage{
		Data:        raw.Body,
		ContentType: ct,
		SnapshotKey: raw.Header.Get("X-Snapshot-Key"),
	}, nil
}

func (g *GraphClient) message(ctx context.Context, method, path string, body interface{}) (string, error) {
	var out MessageResponse
	if err := g.client.do(ctx, method, path, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
