package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

const DefaultPostIndex = "posts"

// Config describes the cluster connection.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
	// Transport overrides the HTTP transport; tests use it to fake the cluster.
	Transport http.RoundTripper
}

// NewClient builds a client and checks the cluster answers.
func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("elastic: build client: %w", err)
	}
	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elastic: cannot connect to cluster: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elastic: cluster returned error: %s", res.String())
	}
	return client, nil
}

// postDocument is the indexed projection of a post.
type postDocument struct {
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// PostIndex keeps posts searchable in one Elasticsearch index.
type PostIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewPostIndex(client *elasticsearch.Client, index string) *PostIndex {
	if index == "" {
		index = DefaultPostIndex
	}
	return &PostIndex{client: client, index: index}
}

// EnsureIndex creates the index with an edge n-gram analyzer on title and
// excerpt when it does not exist yet.
func (p *PostIndex) EnsureIndex(ctx context.Context) error {
	existsRes, err := esapi.IndicesExistsRequest{Index: []string{p.index}}.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	defer existsRes.Body.Close()

	switch {
	case existsRes.StatusCode == http.StatusNotFound:
	case existsRes.StatusCode >= 300:
		return fmt.Errorf("index existence check failed with status %d", existsRes.StatusCode)
	default:
		return nil
	}

	ngram := map[string]any{
		"type":            "text",
		"analyzer":        "edge_ngram_analyzer",
		"search_analyzer": "standard",
	}
	mapping := map[string]any{
		"settings": map[string]any{
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"edge_ngram_analyzer": map[string]any{
						"tokenizer": "edge_ngram_tokenizer",
						"filter":    []string{"lowercase"},
					},
				},
				"tokenizer": map[string]any{
					"edge_ngram_tokenizer": map[string]any{
						"type":        "edge_ngram",
						"min_gram":    2,
						"max_gram":    20,
						"token_chars": []string{"letter", "digit"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"title":       ngram,
				"excerpt":     ngram,
				"content":     map[string]any{"type": "text"},
				"tags":        map[string]any{"type": "keyword"},
				"status":      map[string]any{"type": "keyword"},
				"author":      map[string]any{"type": "keyword"},
				"publishedAt": map[string]any{"type": "date"},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	res, err := esapi.IndicesCreateRequest{Index: p.index, Body: bytes.NewReader(body)}.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %s", res.String())
	}
	return nil
}

func (p *PostIndex) IndexPost(ctx context.Context, post *domain.Post) error {
	data, err := json.Marshal(postDocument{
		Title:       post.Title,
		Excerpt:     post.Excerpt,
		Content:     post.Content,
		Tags:        post.Tags,
		Status:      string(post.Status),
		Author:      post.AuthorID,
		PublishedAt: post.PublishedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      p.index,
		DocumentID: post.ID,
		Body:       bytes.NewReader(data),
	}.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}

// DeletePost removes a post from the index. A missing document is not an error.
func (p *PostIndex) DeletePost(ctx context.Context, id string) error {
	res, err := esapi.DeleteRequest{Index: p.index, DocumentID: id}.Do(ctx, p.client)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

// SearchPosts returns the IDs of the best matching posts, most relevant first.
func (p *PostIndex) SearchPosts(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^3", "excerpt^2", "content", "tags"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
		"size":    limit,
		"_source": false,
	}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	res, err := p.client.Search(
		p.client.Search.WithContext(ctx),
		p.client.Search.WithIndex(p.index),
		p.client.Search.WithBody(buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search error: %s", msg)
	}

	var esRes struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esRes); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	ids := make([]string, 0, len(esRes.Hits.Hits))
	for _, h := range esRes.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Ping reports whether the cluster answers.
func (p *PostIndex) Ping(ctx context.Context) error {
	res, err := p.client.Ping(p.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.New(res.String())
	}
	return nil
}
