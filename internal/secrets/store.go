// Package secrets stores API tokens in the system keyring.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/term"

	"github.com/salmonumbrella/notion-cli/internal/config"
)

const (
	serviceName       = "notion-cli"
	tokenKeyPrefix    = "token:"
	defaultAccountKey = "default_account"

	// BackendEnv selects the keyring backend.
	BackendEnv = "NOTION_KEYRING_BACKEND"
	// PasswordEnv unlocks the encrypted file backend without a prompt.
	PasswordEnv = "NOTION_KEYRING_PASSWORD"

	keyringOpenTimeout = 5 * time.Second
)

var (
	// ErrNotFound is returned for a profile with no stored token.
	ErrNotFound = errors.New("not found")

	errKeyringTimeout = errors.New("keyring open timed out")

	keyringOpenFunc = keyring.Open
)

// Token is one stored credential.
type Token struct {
	Profile    string    `json:"profile"`
	APIToken   string    `json:"api_token"`
	DatabaseID string    `json:"database_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store is the credential store used by the CLI.
type Store interface {
	Keys() ([]string, error)
	SetToken(profile string, tok Token) error
	GetToken(profile string) (Token, error)
	DeleteToken(profile string) error
	ListTokens() ([]Token, error)
	GetDefaultAccount() (string, error)
	SetDefaultAccount(profile string) error
}

// KeyringStore implements Store on a keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore wraps an open keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// KeyringBackendInfo is the configured backend and where it came from.
type KeyringBackendInfo struct {
	Value  string
	Source string
}

// ResolveKeyringBackendInfo reads the backend from the environment, then the
// config file, defaulting to auto.
func ResolveKeyringBackendInfo() KeyringBackendInfo {
	if v := strings.TrimSpace(os.Getenv(BackendEnv)); v != "" {
		return KeyringBackendInfo{Value: strings.ToLower(v), Source: "env"}
	}
	if cfg, err := config.ReadConfig(); err == nil && strings.TrimSpace(cfg.KeyringBackend) != "" {
		return KeyringBackendInfo{Value: strings.ToLower(strings.TrimSpace(cfg.KeyringBackend)), Source: "config"}
	}
	return KeyringBackendInfo{Value: "auto", Source: "default"}
}

func allowedBackends(info KeyringBackendInfo) ([]keyring.BackendType, error) {
	switch info.Value {
	case "", "auto":
		return nil, nil
	case "keychain":
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case "secret-service":
		return []keyring.BackendType{keyring.SecretServiceBackend}, nil
	case "wincred":
		return []keyring.BackendType{keyring.WinCredBackend}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	}
	return nil, fmt.Errorf("invalid keyring backend %q (from %s): use auto, keychain, secret-service, wincred or file", info.Value, info.Source)
}

// shouldForceFileBackend reports whether auto selection must skip the
// Secret Service: on Linux without a D-Bus session it cannot be reached.
func shouldForceFileBackend(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr == ""
}

// shouldUseKeyringTimeout reports whether opening the keyring may hang on a
// Secret Service that never answers.
func shouldUseKeyringTimeout(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr != ""
}

func filePassword(prompt string) (string, error) {
	if v := os.Getenv(PasswordEnv); v != "" {
		return v, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("keyring file backend needs a password: set %s", PasswordEnv)
	}
	return keyring.TerminalPrompt(prompt)
}

// OpenDefault opens the keyring selected by environment and config.
func OpenDefault() (Store, error) {
	info := ResolveKeyringBackendInfo()
	backends, err := allowedBackends(info)
	if err != nil {
		return nil, err
	}

	dbusAddr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	if shouldForceFileBackend(runtime.GOOS, info, dbusAddr) {
		backends = []keyring.BackendType{keyring.FileBackend}
	}

	if info.Value == "auto" || info.Value == "keychain" {
		if err := EnsureKeychainAccess(); err != nil {
			return nil, err
		}
	}

	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, err
	}

	cfg := keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          backends,
		KeychainTrustApplication: true,
		FileDir:                  keyringDir,
		FilePasswordFunc:         filePassword,
	}

	var ring keyring.Keyring
	if shouldUseKeyringTimeout(runtime.GOOS, info, dbusAddr) {
		ring, err = openKeyringWithTimeout(cfg, keyringOpenTimeout)
	} else {
		ring, err = keyringOpenFunc(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", wrapKeychainError(err))
	}
	return NewKeyringStore(ring), nil
}

type openResult struct {
	ring keyring.Keyring
	err  error
}

func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	done := make(chan openResult, 1)
	go func() {
		ring, err := keyringOpenFunc(cfg)
		done <- openResult{ring: ring, err: err}
	}()

	select {
	case res := <-done:
		return res.ring, res.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; the Secret Service may be unavailable.\n"+
			"Use the encrypted file backend instead:\n"+
			"  export %s=file\n"+
			"  export %s=<password>", errKeyringTimeout, timeout, BackendEnv, PasswordEnv)
	}
}

// wrapKeychainError adds recovery steps to a locked macOS keychain error.
// Other errors are returned unchanged.
func wrapKeychainError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "errSecInteractionNotAllowed") && !strings.Contains(msg, "-25308") {
		return err
	}
	return fmt.Errorf("%w\n\nThe macOS keychain is locked. Unlock it and retry:\n"+
		"  security unlock-keychain ~/Library/Keychains/login.keychain-db", err)
}

func tokenKey(profile string) string {
	return tokenKeyPrefix + profile
}

// Keys lists every key in the keyring.
func (s *KeyringStore) Keys() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, wrapKeychainError(err)
	}
	return keys, nil
}

// SetToken stores tok under profile.
func (s *KeyringStore) SetToken(profile string, tok Token) error {
	if strings.TrimSpace(profile) == "" {
		return errors.New("profile is required")
	}
	tok.Profile = profile
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	err = s.ring.Set(keyring.Item{
		Key:   tokenKey(profile),
		Data:  data,
		Label: serviceName + ": " + profile,
	})
	return wrapKeychainError(err)
}

// GetToken loads the token stored under profile.
func (s *KeyringStore) GetToken(profile string) (Token, error) {
	item, err := s.ring.Get(tokenKey(profile))
	if err != nil {
		if isMissingKey(err) {
			return Token{}, fmt.Errorf("token for profile %q: %w", profile, ErrNotFound)
		}
		return Token{}, wrapKeychainError(err)
	}
	var tok Token
	if err := json.Unmarshal(item.Data, &tok); err != nil {
		return Token{}, fmt.Errorf("decode token for profile %q: %w", profile, err)
	}
	return tok, nil
}

// DeleteToken removes the token stored under profile. Backends disagree on
// removing a missing key (nil, ErrKeyNotFound or a raw ENOENT), so the key
// is looked up first.
func (s *KeyringStore) DeleteToken(profile string) error {
	if _, err := s.ring.Get(tokenKey(profile)); err != nil {
		if isMissingKey(err) {
			return fmt.Errorf("token for profile %q: %w", profile, ErrNotFound)
		}
		return wrapKeychainError(err)
	}
	err := s.ring.Remove(tokenKey(profile))
	if isMissingKey(err) {
		return fmt.Errorf("token for profile %q: %w", profile, ErrNotFound)
	}
	return wrapKeychainError(err)
}

func isMissingKey(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist)
}

// ListTokens returns all stored tokens sorted by profile.
func (s *KeyringStore) ListTokens() ([]Token, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	var tokens []Token
	for _, key := range keys {
		if !strings.HasPrefix(key, tokenKeyPrefix) {
			continue
		}
		tok, err := s.GetToken(strings.TrimPrefix(key, tokenKeyPrefix))
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Profile < tokens[j].Profile })
	return tokens, nil
}

// GetDefaultAccount returns the default profile, empty when unset.
func (s *KeyringStore) GetDefaultAccount() (string, error) {
	item, err := s.ring.Get(defaultAccountKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", wrapKeychainError(err)
	}
	return string(item.Data), nil
}

// SetDefaultAccount records the default profile.
func (s *KeyringStore) SetDefaultAccount(profile string) error {
	return wrapKeychainError(s.ring.Set(keyring.Item{
		Key:   defaultAccountKey,
		Data:  []byte(profile),
		Label: serviceName + ": default account",
	}))
}
