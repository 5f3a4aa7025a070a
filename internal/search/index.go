package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/dp_pos/internal/models"
)

const (
	ItemsIndex     = "pos_items"
	CustomersIndex = "pos_customers"
)

// Index mirrors items and customers into Elasticsearch for fuzzy lookup at
// the counter.
type Index struct {
	es *elasticsearch.Client
}

func NewIndex(es *elasticsearch.Client) *Index {
	return &Index{es: es}
}

func (x *Index) put(ctx context.Context, index, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := x.es.Index(index, bytes.NewReader(body),
		x.es.Index.WithContext(ctx),
		x.es.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("index %s/%s: %w", index, id, err)
	}
	return checkResponse(res, "index")
}

func (x *Index) IndexItem(ctx context.Context, it models.Item) error {
	return x.put(ctx, ItemsIndex, it.ID.String(), it)
}

func (x *Index) IndexCustomer(ctx context.Context, c models.Customer) error {
	return x.put(ctx, CustomersIndex, c.ID.String(), c)
}

func (x *Index) Delete(ctx context.Context, index, id string) error {
	res, err := x.es.Delete(index, id, x.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", index, id, err)
	}
	if res.StatusCode == 404 {
		res.Body.Close()
		return nil
	}
	return checkResponse(res, "delete")
}

func (x *Index) SearchItems(ctx context.Context, q string, from, size int) (int64, []models.Item, error) {
	query := map[string]any{
		"multi_match": map[string]any{
			"query":     q,
			"fields":    []string{"itemName"},
			"fuzziness": "AUTO",
		},
	}
	var out []models.Item
	total, err := x.search(ctx, ItemsIndex, query, from, size, &out)
	return total, out, err
}

func (x *Index) SearchCustomers(ctx context.Context, branch, q string, from, size int) (int64, []models.Customer, error) {
	query := map[string]any{
		"bool": map[string]any{
			"must": map[string]any{
				"multi_match": map[string]any{
					"query":     q,
					"fields":    []string{"name^2", "phone"},
					"fuzziness": "AUTO",
				},
			},
			"filter": map[string]any{
				"term": map[string]any{"branch.keyword": branch},
			},
		},
	}
	var out []models.Customer
	total, err := x.search(ctx, CustomersIndex, query, from, size, &out)
	return total, out, err
}

func (x *Index) search(ctx context.Context, index string, query map[string]any, from, size int, dst any) (int64, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(map[string]any{"query": query, "from": from, "size": size}); err != nil {
		return 0, err
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(index),
		x.es.Search.WithBody(&buf),
		x.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, fmt.Errorf("search %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return 0, fmt.Errorf("search %s: %s: %s", index, res.Status(), body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, err
	}

	sources := make([]json.RawMessage, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		sources = append(sources, h.Source)
	}
	raw, err := json.Marshal(sources)
	if err != nil {
		return 0, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return 0, err
	}
	return r.Hits.Total.Value, nil
}

func checkResponse(res *esapi.Response, op string) error {
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %s: %s", op, res.Status(), body)
	}
	return nil
}
