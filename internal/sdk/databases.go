package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/localnerve/jam-build-learnhub/internal/types"
)

const (
	// DefaultPageSize is the page size ListAllDocuments drains with
	DefaultPageSize = 100
	// MaxPageSize is the largest page the server returns
	MaxPageSize = 100
)

// Document is one stored document. Raw holds the full JSON, system
// attributes included, for decoding into a typed entity.
type Document struct {
	ID         string
	Collection string
	Version    uint64
	CreatedAt  string
	UpdatedAt  string
	Raw        json.RawMessage
}

// UnmarshalJSON keeps the raw document alongside its system attributes
func (d *Document) UnmarshalJSON(b []byte) error {
	var meta struct {
		ID         string           `json:"$id"`
		Collection string           `json:"$collection"`
		Version    types.FlexUint64 `json:"$version"`
		CreatedAt  string           `json:"$createdAt"`
		UpdatedAt  string           `json:"$updatedAt"`
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		return err
	}
	d.ID = meta.ID
	d.Collection = meta.Collection
	d.Version = meta.Version.Uint64()
	d.CreatedAt = meta.CreatedAt
	d.UpdatedAt = meta.UpdatedAt
	d.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON writes the raw document back out
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d.Raw) == 0 {
		return []byte("{}"), nil
	}
	return d.Raw, nil
}

// Decode unmarshals the document into v
func (d Document) Decode(v interface{}) error {
	if err := json.Unmarshal(d.Raw, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", d.ID, err)
	}
	return nil
}

// DecodeAll decodes every document into T, stopping at the first failure
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := doc.Decode(&item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Equal builds an equality filter for ListOptions.Filters
func Equal(attribute, value string) string {
	return attribute + ":" + value
}

// ListOptions selects one page of a collection
type ListOptions struct {
	Limit       int
	CursorAfter string
	Filters     []string
	Search      string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.CursorAfter != "" {
		q.Set("cursorAfter", o.CursorAfter)
	}
	for _, f := range o.Filters {
		q.Add("filter", f)
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	return q
}

// DocumentList is one page of documents
type DocumentList struct {
	Total     int64      `json:"total"`
	Documents []Document `json:"documents"`
}

type mutationResponse struct {
	Document Document `json:"document"`
}

// Databases addresses the collections of one database
type Databases struct {
	client     *Client
	databaseID string
}

// Databases returns the document API for databaseID
func (c *Client) Databases(databaseID string) *Databases {
	return &Databases{client: c, databaseID: databaseID}
}

func (d *Databases) path(collection string, id ...string) string {
	p := pathJoin("databases", d.databaseID, "collections", collection, "documents")
	if len(id) > 0 {
		p += pathJoin(id...)
	}
	return p
}

// ListDocuments returns one page of collection
func (d *Databases) ListDocuments(ctx context.Context, collection string, opts ListOptions) (*DocumentList, error) {
	var list DocumentList
	if err := d.client.call(ctx, http.MethodGet, d.path(collection), opts.query(), nil, &list); err != nil {
		return nil, err
	}
	if list.Documents == nil {
		list.Documents = []Document{}
	}
	return &list, nil
}

// ListAllDocuments drains collection page by page, each page starting after
// the last id seen. pageSize is clamped to MaxPageSize. The walk ends on an
// empty page, or on a short page once the reported total has been read, so a
// server capping pages below pageSize still yields every document.
func (d *Databases) ListAllDocuments(ctx context.Context, collection string, pageSize int, filters ...string) ([]Document, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	all := []Document{}
	opts := ListOptions{Limit: pageSize, Filters: filters}
	for {
		page, err := d.ListDocuments(ctx, collection, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Documents...)
		if len(page.Documents) == 0 || (len(page.Documents) < pageSize && int64(len(all)) >= page.Total) {
			return all, nil
		}
		opts.CursorAfter = page.Documents[len(page.Documents)-1].ID
	}
}

// GetDocument fetches one document
func (d *Databases) GetDocument(ctx context.Context, collection, documentID string) (*Document, error) {
	var doc Document
	if err := d.client.call(ctx, http.MethodGet, d.path(collection, documentID), nil, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateDocument creates a document. An empty documentID lets the server assign one.
func (d *Databases) CreateDocument(ctx context.Context, collection, documentID string, data interface{}) (*Document, error) {
	body := map[string]interface{}{"data": data}
	if documentID != "" {
		body["documentId"] = documentID
	}

	var res mutationResponse
	if err := d.client.call(ctx, http.MethodPost, d.path(collection), nil, body, &res); err != nil {
		return nil, err
	}
	return &res.Document, nil
}

// UpdateDocument applies a partial update at version. A nil value removes the attribute.
func (d *Databases) UpdateDocument(ctx context.Context, collection, documentID string, version uint64, data interface{}) (*Document, error) {
	body := map[string]interface{}{
		"version": strconv.FormatUint(version, 10),
		"data":    data,
	}

	var res mutationResponse
	if err := d.client.call(ctx, http.MethodPatch, d.path(collection, documentID), nil, body, &res); err != nil {
		return nil, err
	}
	return &res.Document, nil
}

// DeleteDocument deletes a document at version
func (d *Databases) DeleteDocument(ctx context.Context, collection, documentID string, version uint64) error {
	q := url.Values{"version": {strconv.FormatUint(version, 10)}}
	return d.client.call(ctx, http.MethodDelete, d.path(collection, documentID), q, nil, nil)
}
