package api

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/salmonumbrella/notion-cli/internal/blocks"
)

// MaxChildrenPerRequest is Notion's limit on blocks sent in one request.
const MaxChildrenPerRequest = 100

// Exporter sends block lists larger than one request allows. The first
// batch goes with page creation and the rest are appended in order.
type Exporter struct {
	client    NotionAPI
	batchSize int
	log       zerolog.Logger
}

// ExporterOption configures an Exporter
type ExporterOption func(*Exporter)

// WithBatchSize sets the number of top-level blocks per request. Values
// outside 1..MaxChildrenPerRequest are ignored.
func WithBatchSize(n int) ExporterOption {
	return func(e *Exporter) {
		if n >= 1 && n <= MaxChildrenPerRequest {
			e.batchSize = n
		}
	}
}

// WithExportLogger sets the logger used for progress messages
func WithExportLogger(log zerolog.Logger) ExporterOption {
	return func(e *Exporter) {
		e.log = log
	}
}

// NewExporter creates an Exporter on top of client
func NewExporter(client NotionAPI, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		client:    client,
		batchSize: MaxChildrenPerRequest,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportResult describes a finished export
type ExportResult struct {
	Page    *Page `json:"page"`
	Batches int   `json:"batches"`
	Blocks  int   `json:"blocks"`
}

// Export creates a page in databaseID holding children. Properties are the
// formatted page property values.
func (e *Exporter) Export(ctx context.Context, databaseID string, properties map[string]interface{}, children []blocks.Block) (*ExportResult, error) {
	batches, err := blocks.Batches(children, e.batchSize, 0)
	if err != nil {
		return nil, err
	}

	var first []blocks.Block
	if len(batches) > 0 {
		first = batches[0]
	}
	page, err := e.client.CreatePage(ctx, databaseID, properties, first)
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("page", page.ID).Int("blocks", len(first)).Msg("created page")

	result := &ExportResult{Page: page, Batches: 1, Blocks: blocks.Count(first)}
	if len(batches) > 1 {
		if err := e.appendBatches(ctx, page.ID, batches[1:], result); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Append adds children to an existing page or block in batches.
func (e *Exporter) Append(ctx context.Context, blockID string, children []blocks.Block) (*ExportResult, error) {
	batches, err := blocks.Batches(children, e.batchSize, 0)
	if err != nil {
		return nil, err
	}
	result := &ExportResult{Page: &Page{ID: blocks.NormalizeID(blockID)}}
	if err := e.appendBatches(ctx, blockID, batches, result); err != nil {
		return result, err
	}
	return result, nil
}

func (e *Exporter) appendBatches(ctx context.Context, blockID string, batches [][]blocks.Block, result *ExportResult) error {
	for i, batch := range batches {
		if err := e.client.AppendBlocks(ctx, blockID, batch); err != nil {
			return fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
		}
		result.Batches++
		result.Blocks += blocks.Count(batch)
		e.log.Info().Str("block", blockID).Int("batch", i+1).Int("of", len(batches)).Int("blocks", len(batch)).Msg("appended blocks")
	}
	return nil
}
