package cmd

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/blocks"
	"github.com/salmonumbrella/notion-cli/internal/secrets"
)

type createCall struct {
	databaseID string
	properties map[string]interface{}
	children   []blocks.Block
}

type appendCall struct {
	blockID  string
	children []blocks.Block
}

// fakeNotion records writes and answers reads from its func fields.
type fakeNotion struct {
	created  []createCall
	appended []appendCall

	CreatePageFunc      func(string, map[string]interface{}, []blocks.Block) (*api.Page, error)
	AppendBlocksFunc    func(string, []blocks.Block) error
	GetAllBlocksFunc    func(string) (json.RawMessage, error)
	QueryDatabaseFunc   func(string, json.RawMessage) (json.RawMessage, error)
	ListUsersFunc       func() (json.RawMessage, error)
	FindUserByEmailFunc func(string) (json.RawMessage, error)
	MeFunc              func() (json.RawMessage, error)
}

func (f *fakeNotion) CreatePage(_ context.Context, databaseID string, properties map[string]interface{}, children []blocks.Block) (*api.Page, error) {
	f.created = append(f.created, createCall{databaseID: databaseID, properties: properties, children: children})
	if f.CreatePageFunc != nil {
		return f.CreatePageFunc(databaseID, properties, children)
	}
	return &api.Page{ID: "page-1", URL: "https://www.notion.so/page-1"}, nil
}

func (f *fakeNotion) AppendBlocks(_ context.Context, blockID string, children []blocks.Block) error {
	f.appended = append(f.appended, appendCall{blockID: blockID, children: children})
	if f.AppendBlocksFunc != nil {
		return f.AppendBlocksFunc(blockID, children)
	}
	return nil
}

func (f *fakeNotion) GetAllBlocks(_ context.Context, blockID string) (json.RawMessage, error) {
	if f.GetAllBlocksFunc != nil {
		return f.GetAllBlocksFunc(blockID)
	}
	return json.RawMessage(`[]`), nil
}

func (f *fakeNotion) QueryDatabase(_ context.Context, databaseID string, filter json.RawMessage) (json.RawMessage, error) {
	if f.QueryDatabaseFunc != nil {
		return f.QueryDatabaseFunc(databaseID, filter)
	}
	return json.RawMessage(`[]`), nil
}

func (f *fakeNotion) ListUsers(context.Context) (json.RawMessage, error) {
	if f.ListUsersFunc != nil {
		return f.ListUsersFunc()
	}
	return json.RawMessage(`[]`), nil
}

func (f *fakeNotion) FindUserByEmail(_ context.Context, email string) (json.RawMessage, error) {
	if f.FindUserByEmailFunc != nil {
		return f.FindUserByEmailFunc(email)
	}
	return nil, api.NotFoundError{Message: "no user with email " + email}
}

func (f *fakeNotion) Me(context.Context) (json.RawMessage, error) {
	if f.MeFunc != nil {
		return f.MeFunc()
	}
	return json.RawMessage(`{"object":"user","type":"bot","name":"Docs Bot"}`), nil
}

// memStore is an in-memory secrets.Store.
type memStore struct {
	tokens         map[string]secrets.Token
	defaultAccount string
}

func newMemStore() *memStore {
	return &memStore{tokens: map[string]secrets.Token{}}
}

func (m *memStore) Keys() ([]string, error) {
	keys := make([]string, 0, len(m.tokens))
	for k := range m.tokens {
		keys = append(keys, "token:"+k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStore) SetToken(profile string, tok secrets.Token) error {
	tok.Profile = profile
	m.tokens[profile] = tok
	return nil
}

func (m *memStore) GetToken(profile string) (secrets.Token, error) {
	tok, ok := m.tokens[profile]
	if !ok {
		return secrets.Token{}, secrets.ErrNotFound
	}
	return tok, nil
}

func (m *memStore) DeleteToken(profile string) error {
	if _, ok := m.tokens[profile]; !ok {
		return secrets.ErrNotFound
	}
	delete(m.tokens, profile)
	return nil
}

func (m *memStore) ListTokens() ([]secrets.Token, error) {
	var out []secrets.Token
	for _, tok := range m.tokens {
		out = append(out, tok)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile < out[j].Profile })
	return out, nil
}

func (m *memStore) GetDefaultAccount() (string, error) { return m.defaultAccount, nil }

func (m *memStore) SetDefaultAccount(profile string) error {
	m.defaultAccount = strings.TrimSpace(profile)
	return nil
}
