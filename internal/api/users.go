package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ListUsers returns all workspace users
func (c *Client) ListUsers(ctx context.Context) (json.RawMessage, error) {
	items, err := c.paginate(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return marshalItems(items)
}

// FindUserByEmail looks a person up by email, case-insensitively
func (c *Client) FindUserByEmail(ctx context.Context, email string) (json.RawMessage, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	want := strings.ToLower(strings.TrimSpace(email))
	var found json.RawMessage
	gjson.ParseBytes(users).ForEach(func(_, user gjson.Result) bool {
		if strings.ToLower(user.Get("person.email").String()) == want {
			found = json.RawMessage(user.Raw)
			return false
		}
		return true
	})
	if found == nil {
		return nil, NotFoundError{Message: fmt.Sprintf("user not found: %s", email)}
	}
	return found, nil
}

// Me returns the bot user behind the API token
func (c *Client) Me(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.callWithRetry(ctx, http.MethodGet, "/users/me", nil, nil)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
