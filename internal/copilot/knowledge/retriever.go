// Package knowledge retrieves documentation chunks from Elasticsearch to ground chat answers.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	DefaultIndex            = "copilot-knowledge"
	DefaultTopK             = 5
	DefaultMaxContextLength = 4000

	// minPartialChunk is the smallest remaining budget worth filling with a cut chunk.
	minPartialChunk = 100
	unknownField    = "unknown"
)

type Options struct {
	Index            string
	TopK             int
	MinScore         float64
	MaxContextLength int
}

type Source struct {
	ChunkID   string  `json:"chunk_id"`
	Source    string  `json:"source"`
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
	ChunkSize int     `json:"chunk_size"`
}

type Context struct {
	Text        string   `json:"context"`
	Sources     []Source `json:"sources"`
	TotalChunks int      `json:"total_chunks"`
}

// chunk is one indexed document.
type chunk struct {
	Content  string `json:"content"`
	ChunkID  string `json:"chunk_id"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source chunk   `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type hit struct {
	chunk
	score float64
}

type Retriever struct {
	es     *elasticsearch.Client
	opts   Options
	logger logger.Logger
}

func NewRetriever(es *elasticsearch.Client, opts Options, log logger.Logger) *Retriever {
	if opts.Index == "" {
		opts.Index = DefaultIndex
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.MaxContextLength <= 0 {
		opts.MaxContextLength = DefaultMaxContextLength
	}
	return &Retriever{
		es:     es,
		opts:   opts,
		logger: log.With(map[string]interface{}{"component": "knowledge-retriever", "index": opts.Index}),
	}
}

// Retrieve searches for query and assembles a bounded context. No hits is an empty context.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*Context, error) {
	if strings.TrimSpace(query) == "" {
		return &Context{}, nil
	}

	hits, err := r.search(ctx, query)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(r.opts.Index, err)
	}

	filtered := hits[:0]
	for _, h := range hits {
		if h.score >= r.opts.MinScore {
			filtered = append(filtered, h)
		}
	}

	out := Assemble(filtered, r.opts.MaxContextLength)
	r.logger.Debug("Knowledge retrieved", map[string]interface{}{
		"hits":   len(hits),
		"chunks": out.TotalChunks,
	})
	return out, nil
}

func (r *Retriever) search(ctx context.Context, query string) ([]hit, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{"content": query},
		},
		"size": r.opts.TopK,
	})
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{r.opts.Index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, r.es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.Status())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]hit, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		hits = append(hits, hit{chunk: h.Source, score: h.Score})
	}
	return hits, nil
}

// Assemble concatenates chunks in order until maxLength characters. A chunk that would
// overflow is cut at its last space and marked "..." when more than 100 characters remain;
// assembly stops there. Only whole chunks are listed in Sources.
func Assemble(hits []hit, maxLength int) *Context {
	out := &Context{Sources: []Source{}}
	var parts []string
	length := 0

	for _, h := range hits {
		content := strings.TrimSpace(h.Content)
		n := len([]rune(content))

		if length+n > maxLength {
			if remaining := maxLength - length; remaining > minPartialChunk {
				parts = append(parts, cutAtSpace(content, remaining)+"...")
			}
			break
		}

		parts = append(parts, content)
		length += n
		out.Sources = append(out.Sources, Source{
			ChunkID:   orUnknown(h.ChunkID),
			Source:    orUnknown(h.Source),
			Category:  orUnknown(h.Category),
			Score:     h.score,
			ChunkSize: n,
		})
	}

	out.Text = strings.Join(parts, "\n\n")
	out.TotalChunks = len(parts)
	return out
}

func cutAtSpace(s string, limit int) string {
	r := []rune(s)
	if len(r) > limit {
		r = r[:limit]
	}
	cut := string(r)
	if i := strings.LastIndex(cut, " "); i >= 0 {
		return cut[:i]
	}
	return cut
}

func orUnknown(s string) string {
	if s == "" {
		return unknownField
	}
	return s
}
