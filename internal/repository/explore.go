package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
	"github.com/GregZOL/API-France-March--BOAMP/internal/query"
)

// exploreDialect speaks the Explore v2.1 API (rich boolean-expression
// queries, order_by, limit/offset).
type exploreDialect struct {
	client *Client
	logger *zap.Logger
}

// NewExploreDialect builds the rich-dialect implementation of port.Dialect.
func NewExploreDialect(client *Client, logger *zap.Logger) port.Dialect {
	return &exploreDialect{client: client, logger: logger}
}

func (d *exploreDialect) Name() string { return "explore_v2.1" }

// exploreResponse is the Explore v2.1 wire shape. total_count may be absent.
type exploreResponse struct {
	Results []map[string]interface{} `json:"results"`
	Total   *int64                   `json:"total_count"`
}

func (d *exploreDialect) Search(ctx context.Context, filters port.FilterSet, catalog port.FieldCatalog) (*port.ProviderResult, error) {
	compiled := query.CompileRich(filters, catalog)
	url := compiled.URL(d.client.BaseURL, d.client.Dataset, d.client.APIKey)

	var resp exploreResponse
	if err := d.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("explore search: %w", err)
	}

	rows := make([]port.RawRow, 0, len(resp.Results))
	for _, raw := range resp.Results {
		rows = append(rows, decodeRow(raw))
	}

	d.logger.Debug("explore search finished",
		zap.Int("rows", len(rows)),
		zap.String("url", url),
	)

	return &port.ProviderResult{Rows: rows, Total: resp.Total, URL: url}, nil
}

// decodeRow copes with both row shapes the portal emits: flat maps and maps
// wrapping the payload in a "fields" sub-object.
func decodeRow(raw map[string]interface{}) port.RawRow {
	fields := raw
	if sub, ok := raw["fields"].(map[string]interface{}); ok {
		fields = sub
	}
	id := stringify(raw["id"])
	if id == "" {
		id = stringify(raw["recordid"])
	}
	return port.RawRow{ID: id, Fields: fields}
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers arrive as float64; ids are integral in practice.
		return fmt.Sprintf("%.0f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
