package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fanidx", cmd.Use)
	assert.Contains(t, cmd.Long, "transitive")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"init"},
		{"item", "put"}, {"item", "rm"}, {"item", "show"}, {"item", "new-ident"},
		{"rel", "add"}, {"rel", "rm"}, {"rel", "from"}, {"rel", "to"},
		{"task", "put"}, {"task", "close"}, {"task", "reopen"}, {"task", "block"}, {"task", "unblock"}, {"task", "show"},
		{"ls"}, {"reach"}, {"closure"}, {"visible"}, {"special"}, {"children"},
		{"rebuild"}, {"check"}, {"scenario"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
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

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	tests := []struct {
		path []string
		flag string
		def  string
	}{
		{[]string{"ls"}, "all", "false"},
		{[]string{"ls"}, "under", ""},
		{[]string{"closure"}, "up", "false"},
		{[]string{"visible"}, "at", ""},
		{[]string{"rebuild"}, "dirty", "false"},
		{[]string{"task", "put"}, "priority", "10"},
		{[]string{"item", "put"}, "type", "note"},
		{[]string{"scenario"}, "update", "false"},
	}
	for _, tt := range tests {
		sub, _, err := cmd.Find(tt.path)
		require.NoError(t, err)
		f := sub.Flags().Lookup(tt.flag)
		require.NotNil(t, f, "%v --%s", tt.path, tt.flag)
		assert.Equal(t, tt.def, f.DefValue)
	}
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "ls"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
