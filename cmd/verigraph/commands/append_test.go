package commands_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verigraph/verigraph/cmd/verigraph/commands"
	"github.com/verigraph/verigraph/config"
)

// The quality and confidence flag defaults must form a valid cell together,
// or every append that does not override one of them fails at construction.
func TestAppendDefaultFlagsFormValidCell(t *testing.T) {
	t.Setenv("VERIGRAPH_DATABASE_PATH", filepath.Join(t.TempDir(), "test.db"))
	config.Reset()
	t.Cleanup(config.Reset)

	commands.InitCmd.SetArgs([]string{"Acme Corp", "acme"})
	require.NoError(t, commands.InitCmd.Execute())

	commands.AppendCmd.SetArgs([]string{
		"--namespace", "acme",
		"--subject", "employee:jane",
		"--predicate", "has_role",
		"--object", "Engineer",
	})
	require.NoError(t, commands.AppendCmd.Execute())

	// The documented holdings grant passes neither --quality nor --confidence
	commands.AppendCmd.SetArgs([]string{
		"--type", "access_rule",
		"--namespace", "acme",
		"--subject", "user:hr_admin",
		"--predicate", "holds",
		"--object", "acme",
	})
	require.NoError(t, commands.AppendCmd.Execute())
}
