package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiontracker/internal/config"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := rootCmd()
	for _, path := range [][]string{
		{"serve"}, {"migrate"}, {"cleanup-goals"}, {"remind"},
		{"outbox", "list"}, {"outbox", "retry"}, {"outbox", "abandon"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	cleanup, _, err := root.Find([]string{"cleanup-goals"})
	require.NoError(t, err)
	for _, flag := range []string{"user", "from", "to", "dry-run"} {
		assert.NotNil(t, cleanup.Flags().Lookup(flag), flag)
	}
}

func TestCSRFKey(t *testing.T) {
	cfg := config.Default()

	a, err := csrfKey(cfg)
	require.NoError(t, err)
	b, err := csrfKey(cfg)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b, "generated keys are random")

	cfg.Server.CSRFKey = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
	key, err := csrfKey(cfg)
	require.NoError(t, err)
	assert.Equal(t, byte(0x11), key[1])

	cfg.Server.CSRFKey = "short"
	_, err = csrfKey(cfg)
	assert.Error(t, err)
}
