package api

import "strings"

// NewClientFromCredentials creates an API client for token. An empty token
// is reported as an AuthenticationError before any request is made.
func NewClientFromCredentials(token string, opts ...ClientOption) (NotionAPI, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, AuthenticationError{Message: "no API token configured (use --token, NOTION_API_TOKEN, or 'notion auth login')"}
	}
	return NewClient(token, opts...), nil
}
