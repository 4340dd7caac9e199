package cmd

import (
	"os"

	"github.com/salmonumbrella/notion-cli/internal/api"
	"github.com/salmonumbrella/notion-cli/internal/secrets"
)

// Swappable in tests.
var (
	openSecretsStore       = secrets.OpenDefault
	newClientFromCredsFunc = api.NewClientFromCredentials
	envGet                 = os.Getenv
	readFile               = os.ReadFile
)
