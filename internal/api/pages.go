package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/salmonumbrella/notion-cli/internal/blocks"
)

// CreatePage creates a page under a database
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]interface{}, children []blocks.Block) (*Page, error) {
	if properties == nil {
		properties = map[string]interface{}{}
	}
	body := map[string]interface{}{
		"parent":     map[string]interface{}{"database_id": blocks.NormalizeID(databaseID)},
		"properties": properties,
		"children":   blocks.Format(children),
	}

	resp, err := c.callWithRetry(ctx, http.MethodPost, "/pages", nil, body)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	result := gjson.ParseBytes(resp)
	page := &Page{ID: result.Get("id").String(), URL: result.Get("url").String()}
	if page.ID == "" {
		return nil, fmt.Errorf("create page: response has no id")
	}
	return page, nil
}

// AppendBlocks appends children to a page or block
func (c *Client) AppendBlocks(ctx context.Context, blockID string, children []blocks.Block) error {
	path := fmt.Sprintf("/blocks/%s/children", blocks.NormalizeID(blockID))
	body := map[string]interface{}{"children": blocks.Format(children)}

	if _, err := c.callWithRetry(ctx, http.MethodPatch, path, nil, body); err != nil {
		return fmt.Errorf("append blocks to %s: %w", blockID, err)
	}
	return nil
}

// GetAllBlocks fetches the full block tree under a page or block
func (c *Client) GetAllBlocks(ctx context.Context, blockID string) (json.RawMessage, error) {
	tree, err := c.blockTree(ctx, blocks.NormalizeID(blockID))
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blocks: %w", err)
	}
	return out, nil
}

func (c *Client) blockTree(ctx context.Context, blockID string) ([]map[string]interface{}, error) {
	items, err := c.paginate(ctx, http.MethodGet, fmt.Sprintf("/blocks/%s/children", blockID), nil)
	if err != nil {
		return nil, fmt.Errorf("get children of %s: %w", blockID, err)
	}

	tree := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		var block map[string]interface{}
		if err := json.Unmarshal(item, &block); err != nil {
			return nil, fmt.Errorf("failed to parse block: %w", err)
		}
		if gjson.GetBytes(item, "has_children").Bool() {
			children, err := c.blockTree(ctx, gjson.GetBytes(item, "id").String())
			if err != nil {
				return nil, err
			}
			block[blocks.ChildrenKey] = children
		}
		tree = append(tree, block)
	}
	return tree, nil
}

// QueryDatabase returns all pages of a database matching filter
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter json.RawMessage) (json.RawMessage, error) {
	var body map[string]interface{}
	if len(strings.TrimSpace(string(filter))) > 0 {
		if !json.Valid(filter) {
			return nil, ValidationError{Message: "filter is not valid JSON"}
		}
		body = map[string]interface{}{"filter": filter}
	}

	path := fmt.Sprintf("/databases/%s/query", blocks.NormalizeID(databaseID))
	items, err := c.paginate(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("query database %s: %w", databaseID, err)
	}
	return marshalItems(items)
}

func marshalItems(items []json.RawMessage) (json.RawMessage, error) {
	if items == nil {
		items = []json.RawMessage{}
	}
	out, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return out, nil
}
