// Package qdrant implements vectorstore.Store against the Qdrant REST API.
// The client issues commands only and never caches store state; collections
// and points are owned by the remote Qdrant process.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hupe1980/ragmesh/core"
	"github.com/hupe1980/ragmesh/vectorstore"
)

// DefaultURL is the conventional local Qdrant REST endpoint.
const DefaultURL = "http://localhost:6333"

// DefaultTimeout bounds a single store call.
const DefaultTimeout = 30 * time.Second

// Options configure the Qdrant client.
type Options struct {
	// ResetPolicy governs EnsureCollection behavior on existing collections.
	// The default preserves data; ResetOnExists reproduces the destructive
	// delete-and-recreate behavior.
	ResetPolicy vectorstore.ResetPolicy
	// APIKey is sent as the api-key header when non-empty.
	APIKey string
	// Timeout applied per call.
	Timeout time.Duration
	// HTTPClient allows injecting a custom transport.
	HTTPClient *http.Client
}

// Client is an HTTP client for Qdrant implementing vectorstore.Store. It is
// stateless and safe for concurrent use.
type Client struct {
	baseURL string
	opts    Options
}

var _ vectorstore.Store = (*Client)(nil)

// New creates a Client for the given base URL (e.g. "http://localhost:6333").
// An empty URL selects DefaultURL.
func New(baseURL string, optFns ...func(o *Options)) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	opts := Options{
		ResetPolicy: vectorstore.AppendIfExists,
		Timeout:     DefaultTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{baseURL: baseURL, opts: opts}
}

type createCollectionRequest struct {
	Vectors struct {
		Size     int    `json:"size"`
		Distance string `json:"distance"`
	} `json:"vectors"`
	QuantizationConfig *scalarQuantization `json:"quantization_config,omitempty"`
}

type scalarQuantization struct {
	Scalar struct {
		Type string `json:"type"`
	} `json:"scalar"`
}

type upsertRequest struct {
	Points []vectorstore.Point `json:"points"`
}

type searchRequest struct {
	Vector      []float32   `json:"vector"`
	Limit       int         `json:"limit"`
	Filter      *wireFilter `json:"filter,omitempty"`
	WithPayload bool        `json:"with_payload"`
}

type wireFilter struct {
	Must []wireCondition `json:"must"`
}

type wireCondition struct {
	Key   string     `json:"key"`
	Match *wireMatch `json:"match,omitempty"`
	Range *wireRange `json:"range,omitempty"`
}

type wireMatch struct {
	Value any `json:"value"`
}

type wireRange struct {
	GTE *float64 `json:"gte,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

type searchResponse struct {
	Result []vectorstore.ScoredPoint `json:"result"`
}

type existsResponse struct {
	Result struct {
		Exists bool `json:"exists"`
	} `json:"result"`
}

type collectionInfoResponse struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection implements vectorstore.Store. With AppendIfExists an
// existing collection is reused after a dimension check; with ResetOnExists
// it is deleted and recreated empty, enabling scalar quantization when
// requested by the config.
func (c *Client) EnsureCollection(ctx context.Context, cfg vectorstore.CollectionConfig) error {
	exists, err := c.CollectionExists(ctx, cfg.Name)
	if err != nil {
		return err
	}

	if exists {
		switch c.opts.ResetPolicy {
		case vectorstore.AppendIfExists:
			dims, err := c.collectionDimensions(ctx, cfg.Name)
			if err != nil {
				return err
			}
			if dims != cfg.Dimensions {
				return &vectorstore.StoreError{
					Op:         "ensure_collection",
					Collection: cfg.Name,
					Message:    fmt.Sprintf("existing collection has %d dimensions, want %d", dims, cfg.Dimensions),
				}
			}
			return nil
		case vectorstore.ResetOnExists:
			if err := c.DeleteCollection(ctx, cfg.Name); err != nil {
				return err
			}
		}
	}

	return c.createCollection(ctx, cfg)
}

func (c *Client) createCollection(ctx context.Context, cfg vectorstore.CollectionConfig) error {
	distance := cfg.Distance
	if distance == "" {
		distance = vectorstore.DistanceCosine
	}

	var req createCollectionRequest
	req.Vectors.Size = cfg.Dimensions
	req.Vectors.Distance = string(distance)
	if cfg.Quantization {
		q := &scalarQuantization{}
		q.Scalar.Type = "int8"
		req.QuantizationConfig = q
	}

	_, err := c.do(ctx, http.MethodPut, "/collections/"+cfg.Name, "ensure_collection", cfg.Name, req)
	return err
}

// DeleteCollection implements vectorstore.Store.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodDelete, "/collections/"+name, "delete_collection", name, nil)
	return err
}

// CollectionExists implements vectorstore.Store.
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	body, err := c.do(ctx, http.MethodGet, "/collections/"+name+"/exists", "collection_exists", name, nil)
	if err != nil {
		return false, err
	}
	var decoded existsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return false, &core.DecodeError{Op: "collection_exists", Err: err}
	}
	return decoded.Result.Exists, nil
}

func (c *Client) collectionDimensions(ctx context.Context, name string) (int, error) {
	body, err := c.do(ctx, http.MethodGet, "/collections/"+name, "collection_info", name, nil)
	if err != nil {
		return 0, err
	}
	var decoded collectionInfoResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, &core.DecodeError{Op: "collection_info", Err: err}
	}
	return decoded.Result.Config.Params.Vectors.Size, nil
}

// Upsert implements vectorstore.Store. The wait=true query parameter defers
// the response until the write is durable, so an immediately following Search
// is guaranteed to see the points.
func (c *Client) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	_, err := c.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", "upsert", collection, upsertRequest{Points: points})
	return err
}

// Search implements vectorstore.Store. Results arrive ordered by descending
// similarity; quantized collections may deviate from exact scores by at most
// vectorstore.ScoreTolerance.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int, filter *vectorstore.Filter) ([]vectorstore.ScoredPoint, error) {
	req := searchRequest{
		Vector:      vector,
		Limit:       limit,
		Filter:      toWireFilter(filter),
		WithPayload: true,
	}

	body, err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", "search", collection, req)
	if err != nil {
		return nil, err
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &core.DecodeError{Op: "search", Err: err}
	}
	return decoded.Result, nil
}

func toWireFilter(filter *vectorstore.Filter) *wireFilter {
	if filter == nil || len(filter.Must) == 0 {
		return nil
	}
	wf := &wireFilter{Must: make([]wireCondition, 0, len(filter.Must))}
	for _, cond := range filter.Must {
		wc := wireCondition{Key: cond.Key}
		if cond.Match != nil {
			wc.Match = &wireMatch{Value: cond.Match}
		}
		if cond.GTE != nil || cond.LTE != nil {
			wc.Range = &wireRange{GTE: cond.GTE, LTE: cond.LTE}
		}
		wf.Must = append(wf.Must, wc)
	}
	return wf
}

// do sends one request and returns the raw response body. Network failures
// map to *core.TransportError; non-2xx store responses map to *StoreError
// carrying status and body for diagnosis.
func (c *Client) do(ctx context.Context, method, path, op, collection string, payload any) ([]byte, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &core.DecodeError{Op: op, Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, &core.TransportError{Op: op, URL: url, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.APIKey != "" {
		req.Header.Set("api-key", c.opts.APIKey)
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, &core.TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.TransportError{Op: op, URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &vectorstore.StoreError{
			Op:         op,
			Collection: collection,
			Status:     resp.StatusCode,
			Message:    string(bytes.TrimSpace(body)),
		}
	}
	return body, nil
}
