package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
	"github.com/GregZOL/API-France-March--BOAMP/internal/query"
)

// recordsDialect speaks the legacy Records v1 API (refinement parameters,
// rows/start pagination, no boolean expressions).
type recordsDialect struct {
	client *Client
	logger *zap.Logger
}

// NewRecordsDialect builds the legacy-dialect implementation of port.Dialect.
func NewRecordsDialect(client *Client, logger *zap.Logger) port.Dialect {
	return &recordsDialect{client: client, logger: logger}
}

func (d *recordsDialect) Name() string { return "records_v1" }

// recordsResponse is the Records v1 wire shape.
type recordsResponse struct {
	Records []struct {
		RecordID string                 `json:"recordid"`
		Fields   map[string]interface{} `json:"fields"`
	} `json:"records"`
	NHits *int64 `json:"nhits"`
}

func (d *recordsDialect) Search(ctx context.Context, filters port.FilterSet, catalog port.FieldCatalog) (*port.ProviderResult, error) {
	compiled := query.CompileLegacy(filters, catalog)
	url := compiled.URL(d.client.BaseURL, d.client.Dataset, d.client.APIKey)

	var resp recordsResponse
	if err := d.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("records search: %w", err)
	}

	rows := make([]port.RawRow, 0, len(resp.Records))
	for _, rec := range resp.Records {
		fields := rec.Fields
		if fields == nil {
			fields = map[string]interface{}{}
		}
		rows = append(rows, port.RawRow{ID: rec.RecordID, Fields: fields})
	}

	d.logger.Debug("records search finished",
		zap.Int("rows", len(rows)),
		zap.String("url", url),
	)

	return &port.ProviderResult{Rows: rows, Total: resp.NHits, URL: url}, nil
}
