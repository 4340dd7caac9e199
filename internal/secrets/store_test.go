package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/99designs/keyring"
)

// withHome points the config directory at a temp dir and optionally writes
// a config file into it.
func withHome(t *testing.T, configYAML string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	if configYAML != "" {
		dir := filepath.Join(home, ".config", "notion")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return home
}

func TestResolveKeyringBackendInfo(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		config string
		want   KeyringBackendInfo
	}{
		{name: "default", want: KeyringBackendInfo{Value: "auto", Source: "default"}},
		{name: "config", config: "keyring_backend: Secret-Service\n", want: KeyringBackendInfo{Value: "secret-service", Source: "config"}},
		{name: "env beats config", env: " FILE ", config: "keyring_backend: keychain\n", want: KeyringBackendInfo{Value: "file", Source: "env"}},
		{name: "blank config value", config: "keyring_backend: \"  \"\n", want: KeyringBackendInfo{Value: "auto", Source: "default"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withHome(t, tt.config)
			t.Setenv(BackendEnv, tt.env)
			if got := ResolveKeyringBackendInfo(); got != tt.want {
				t.Errorf("ResolveKeyringBackendInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAllowedBackends(t *testing.T) {
	tests := []struct {
		value   string
		want    []keyring.BackendType
		wantErr bool
	}{
		{value: "auto"},
		{value: ""},
		{value: "keychain", want: []keyring.BackendType{keyring.KeychainBackend}},
		{value: "secret-service", want: []keyring.BackendType{keyring.SecretServiceBackend}},
		{value: "wincred", want: []keyring.BackendType{keyring.WinCredBackend}},
		{value: "file", want: []keyring.BackendType{keyring.FileBackend}},
		{value: "vault", wantErr: true},
		{value: "pass", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := allowedBackends(KeyringBackendInfo{Value: tt.value, Source: "config"})
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), fmt.Sprintf("%q (from config)", tt.value)) {
					t.Fatalf("allowedBackends(%q) error = %v, want invalid backend naming its source", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("allowedBackends(%q) error = %v", tt.value, err)
			}
			if len(got) != len(tt.want) || (len(got) > 0 && got[0] != tt.want[0]) {
				t.Errorf("allowedBackends(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestBackendSelectionOnLinux(t *testing.T) {
	const bus = "unix:path=/run/user/1000/bus"
	tests := []struct {
		name        string
		goos        string
		backend     string
		dbusAddr    string
		forceFile   bool
		withTimeout bool
	}{
		{name: "auto without session bus", goos: "linux", backend: "auto", forceFile: true},
		{name: "auto with session bus", goos: "linux", backend: "auto", dbusAddr: bus, withTimeout: true},
		{name: "explicit secret service", goos: "linux", backend: "secret-service", dbusAddr: bus},
		{name: "explicit file", goos: "linux", backend: "file"},
		{name: "macOS auto", goos: "darwin", backend: "auto", dbusAddr: bus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := KeyringBackendInfo{Value: tt.backend}
			if got := shouldForceFileBackend(tt.goos, info, tt.dbusAddr); got != tt.forceFile {
				t.Errorf("shouldForceFileBackend() = %v, want %v", got, tt.forceFile)
			}
			if got := shouldUseKeyringTimeout(tt.goos, info, tt.dbusAddr); got != tt.withTimeout {
				t.Errorf("shouldUseKeyringTimeout() = %v, want %v", got, tt.withTimeout)
			}
		})
	}
}

func TestOpenKeyringWithTimeout(t *testing.T) {
	original := keyringOpenFunc
	t.Cleanup(func() { keyringOpenFunc = original })

	keyringOpenFunc = func(keyring.Config) (keyring.Keyring, error) {
		return keyring.NewArrayKeyring(nil), nil
	}
	ring, err := openKeyringWithTimeout(keyring.Config{}, time.Second)
	if err != nil || ring == nil {
		t.Fatalf("openKeyringWithTimeout() = %v, %v", ring, err)
	}

	release := make(chan struct{})
	done := make(chan struct{})
	keyringOpenFunc = func(keyring.Config) (keyring.Keyring, error) {
		defer close(done)
		<-release
		return keyring.NewArrayKeyring(nil), nil
	}
	_, err = openKeyringWithTimeout(keyring.Config{}, 20*time.Millisecond)
	close(release)
	<-done

	if !errors.Is(err, errKeyringTimeout) {
		t.Fatalf("openKeyringWithTimeout() error = %v, want errKeyringTimeout", err)
	}
	for _, hint := range []string{"export NOTION_KEYRING_BACKEND=file", "export NOTION_KEYRING_PASSWORD="} {
		if !strings.Contains(err.Error(), hint) {
			t.Errorf("timeout error missing %q: %s", hint, err)
		}
	}
}

func TestWrapKeychainError(t *testing.T) {
	if wrapKeychainError(nil) != nil {
		t.Error("wrapKeychainError(nil) should be nil")
	}

	other := errors.New("dbus: connection refused")
	if got := wrapKeychainError(other); got != other {
		t.Errorf("wrapKeychainError() changed an unrelated error: %v", got)
	}

	locked := errors.New("operation failed: errSecInteractionNotAllowed -25308")
	got := wrapKeychainError(locked)
	if !errors.Is(got, locked) || !strings.Contains(got.Error(), "security unlock-keychain") {
		t.Errorf("wrapKeychainError() = %v, want wrapped error with unlock steps", got)
	}
}

func TestFilePasswordFromEnv(t *testing.T) {
	t.Setenv(PasswordEnv, "from-env")
	got, err := filePassword("Password: ")
	if err != nil || got != "from-env" {
		t.Fatalf("filePassword() = %q, %v", got, err)
	}
}

func TestOpenDefaultFileBackend(t *testing.T) {
	home := withHome(t, "")
	t.Setenv(BackendEnv, "file")
	t.Setenv(PasswordEnv, "test-password")

	store, err := OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault() error = %v", err)
	}
	if err := store.SetToken("default", Token{APIToken: "secret_file", DatabaseID: "db"}); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(home, ".config", "notion", "keyring"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected the token under the notion keyring dir, got %v, %v", entries, err)
	}

	reopened, err := OpenDefault()
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	tok, err := reopened.GetToken("default")
	if err != nil || tok.APIToken != "secret_file" || tok.DatabaseID != "db" {
		t.Fatalf("GetToken() = %+v, %v", tok, err)
	}
}

func TestOpenDefaultRejectsUnknownBackend(t *testing.T) {
	withHome(t, "keyring_backend: vault\n")
	t.Setenv(BackendEnv, "")

	_, err := OpenDefault()
	if err == nil || !strings.Contains(err.Error(), `"vault" (from config)`) {
		t.Fatalf("OpenDefault() error = %v, want invalid backend from config", err)
	}
}
