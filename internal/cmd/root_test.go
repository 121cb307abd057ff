package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "seed", "rederive"}, names)
}

func TestRederiveCommand_RejectsNegativeLimit(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"rederive", "--limit", "-5"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--limit")
}

func TestSeedCommand_Flags(t *testing.T) {
	seed := NewSeedCommand()
	flag := seed.Flags().Lookup("file")
	require.NotNil(t, flag)
	assert.Equal(t, "f", flag.Shorthand)
}
