package api

import (
	"context"
	"encoding/json"

	"github.com/salmonumbrella/notion-cli/internal/blocks"
)

// NotionAPI defines the operations the CLI needs from Notion. Client
// implements it over HTTP; tests substitute fakes.
type NotionAPI interface {
	// CreatePage creates a page in a database with the given property
	// values and initial children. Notion accepts at most 100 children per
	// request; use an Exporter to send more.
	CreatePage(ctx context.Context, databaseID string, properties map[string]interface{}, children []blocks.Block) (*Page, error)

	// AppendBlocks appends children to a page or block.
	AppendBlocks(ctx context.Context, blockID string, children []blocks.Block) error

	// GetAllBlocks fetches every child block of a page or block. Blocks
	// with has_children are fetched recursively and their children stored
	// under a top-level "children" key.
	GetAllBlocks(ctx context.Context, blockID string) (json.RawMessage, error)

	// QueryDatabase returns every page of a database, optionally filtered.
	// filter is a Notion filter object or nil.
	QueryDatabase(ctx context.Context, databaseID string, filter json.RawMessage) (json.RawMessage, error)

	// ListUsers returns every user in the workspace.
	ListUsers(ctx context.Context) (json.RawMessage, error)

	// FindUserByEmail returns the person with the given email, or a
	// NotFoundError.
	FindUserByEmail(ctx context.Context, email string) (json.RawMessage, error)

	// Me returns the bot user the token belongs to.
	Me(ctx context.Context) (json.RawMessage, error)
}

// Page is the part of a created page the CLI reports back.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Ensure Client implements NotionAPI at compile time
var _ NotionAPI = (*Client)(nil)
