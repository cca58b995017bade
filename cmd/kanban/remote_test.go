package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/kv"
	"github.com/amonks/kanban/server"
)

func TestServerFlagUsesRemoteBoard(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	store := board.Open(board.NewGateway(kv.NewMemoryStore(), board.GatewayOptions{}), board.Options{})
	srv, err := server.New(server.Options{Store: store})
	require.NoError(t, err)
	httpServer := httptest.NewServer(srv.Handler())
	t.Cleanup(httpServer.Close)
	t.Cleanup(func() {
		rootServer = ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append([]string{"--server", httpServer.URL}, args...))
		err := rootCmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	out, err := execute("add", "Remote task")
	require.NoError(t, err)
	assert.Contains(t, out, "Added ")
	assert.Contains(t, out, ": Remote task")

	items := store.Board().Items
	require.Len(t, items, 1)
	assert.Equal(t, "Remote task", items[0].Title)

	_, err = execute("finish", items[0].ID[:8])
	require.NoError(t, err)
	done, err := store.Get(items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, board.StatusDone, done.Status)

	out, err = execute("wip")
	require.NoError(t, err)
	assert.Equal(t, "In progress: 0/3 (3 available)\n", out)

	_, err = execute("wip", "set", "0")
	assert.ErrorIs(t, err, board.ErrInvalidWIPLimit)
}
