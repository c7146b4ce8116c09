package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and captures its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mao", cmd.Use)
	assert.Contains(t, cmd.Long, "rule modules")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"deal", "rules", "simulate", "journal"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestGlobalFlags_EnvDefaults(t *testing.T) {
	t.Setenv("MAO_FORMAT", "json")
	t.Setenv("MAO_VERBOSE", "true")

	cmd := NewRootCommand()
	assert.Equal(t, "json", cmd.PersistentFlags().Lookup("format").DefValue)
	assert.Equal(t, "true", cmd.PersistentFlags().Lookup("verbose").DefValue)
}

func TestGlobalFlags_BadEnvRejected(t *testing.T) {
	t.Setenv("MAO_VERBOSE", "banana")

	_, err := execute(t, "rules", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment defaults")
}

func TestDealCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	dealCmd, _, err := cmd.Find([]string{"deal"})
	require.NoError(t, err)

	seedFlag := dealCmd.Flags().Lookup("seed")
	require.NotNil(t, seedFlag)
	assert.Equal(t, "0", seedFlag.DefValue)

	handsFlag := dealCmd.Flags().Lookup("hands")
	require.NotNil(t, handsFlag)
	assert.Equal(t, "false", handsFlag.DefValue)
}

func TestJournalCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	journalCmd, _, err := cmd.Find([]string{"journal"})
	require.NoError(t, err)

	for _, name := range []string{"db", "match", "kind", "rule", "since", "limit"} {
		require.NotNil(t, journalCmd.Flags().Lookup(name), "flag %s should exist", name)
	}

	playerFlag := journalCmd.Flags().Lookup("player")
	require.NotNil(t, playerFlag)
	assert.Equal(t, "-1", playerFlag.DefValue)
}

func TestJournalRequiresDB(t *testing.T) {
	_, err := execute(t, "journal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(t, "--format", "invalid", "rules", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
