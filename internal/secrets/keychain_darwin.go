//go:build darwin

package secrets

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// IsKeychainLockedError reports whether errStr is the error macOS returns
// for a locked keychain when no UI prompt is allowed.
func IsKeychainLockedError(errStr string) bool {
	return strings.Contains(errStr, "errSecInteractionNotAllowed") || strings.Contains(errStr, "-25308")
}

func loginKeychainPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return filepath.Join(home, "Library", "Keychains", "login.keychain-db")
}

// CheckKeychainLocked reports whether the login keychain is locked.
func CheckKeychainLocked() bool {
	out, err := exec.Command("security", "show-keychain-info", loginKeychainPath()).CombinedOutput()
	if err == nil {
		return false
	}
	return IsKeychainLockedError(string(out)) || strings.Contains(string(out), "locked")
}

// UnlockKeychain prompts for the login password through security(1).
func UnlockKeychain() error {
	cmd := exec.Command("security", "unlock-keychain", loginKeychainPath())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("unlock keychain: %w", err)
	}
	return nil
}

// EnsureKeychainAccess unlocks the login keychain when it is locked and a
// terminal is attached.
func EnsureKeychainAccess() error {
	if !CheckKeychainLocked() {
		return nil
	}
	if os.Getenv(BackendEnv) == "file" {
		return nil
	}
	fmt.Fprintln(os.Stderr, "The login keychain is locked; unlocking it to read Notion credentials.")
	return UnlockKeychain()
}
