package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/output"
	"github.com/salmonumbrella/notion-cli/internal/secrets"
)

// withTestContext points output at buffers and selects format for helpers
// called outside rootCmd.Execute.
func withTestContext(t *testing.T, format output.Format) (context.Context, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	ctx := withIO(context.Background(), &bytes.Buffer{}, out, errBuf)
	ctx = output.WithFormat(ctx, format)
	ctx = output.WithQuiet(ctx, true)

	prevType, prevFmt := outputType, outputFmt
	outputType = format
	outputFmt = string(format)
	t.Cleanup(func() {
		outputType = prevType
		outputFmt = prevFmt
	})
	return ctx, out, errBuf
}

// cliEnv is the fake world a command runs in.
type cliEnv struct {
	client    *fakeNotion
	store     *memStore
	env       map[string]string
	config    string
	stdin     string
	gotTokens []string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{
		client: &fakeNotion{},
		store:  newMemStore(),
		env:    map[string]string{},
		config: cfgPath,
	}
}

// run executes the root command with args and returns stdout and stderr.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	prevEnv, prevStore, prevClient := envGet, openSecretsStore, newClientFromCredsFunc
	envGet = func(key string) string { return e.env[key] }
	openSecretsStore = func() (secrets.Store, error) { return e.store, nil }
	newClientFromCredsFunc = func(token string, opts ...api.ClientOption) (api.NotionAPI, error) {
		e.gotTokens = append(e.gotTokens, token)
		return e.client, nil
	}
	t.Cleanup(func() {
		envGet, openSecretsStore, newClientFromCredsFunc = prevEnv, prevStore, prevClient
	})

	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	in := strings.NewReader(e.stdin)

	resetCommandTree(rootCmd)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errBuf)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(append([]string{"--config", e.config}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		resetCommandTree(rootCmd)
	})

	err := Execute()
	return out.String(), errBuf.String(), err
}

// resetCommandTree restores every flag to its default and drops contexts
// left by earlier runs.
func resetCommandTree(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	cmd.SetContext(nil)
	for _, child := range cmd.Commands() {
		resetCommandTree(child)
	}
	outputType = ""
	client = nil
	cfg = nil
}

func writeConfig(t *testing.T, e *cliEnv, content string) {
	t.Helper()
	if err := os.WriteFile(e.config, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
