package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientCreatesTasksDatabase(t *testing.T) {
	dir := t.TempDir()
	mainDB := filepath.Join(dir, "bookboss.db")

	client, err := NewClient(mainDB, DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	assert.FileExists(t, filepath.Join(dir, "bookboss-tasks.db"))
}

func TestClientStartStop(t *testing.T) {
	dir := t.TempDir()
	client, err := NewClient(filepath.Join(dir, "bookboss.db"), DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	client.Register(NewRefreshBookQueue(nil))

	ctx, cancel := context.WithCancel(context.Background())
	client.Start(ctx)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx))
}

func TestClientStopBeforeStart(t *testing.T) {
	dir := t.TempDir()
	client, err := NewClient(filepath.Join(dir, "bookboss.db"), DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.True(t, client.Stop(ctx))
}
