package database

import (
	"context"
	"testing"

	"github.com/localmart/localmart-backend-go/config"
	"github.com/localmart/localmart-backend-go/docstore"
	"github.com/localmart/localmart-backend-go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDocstore_Memory(t *testing.T) {
	store, err := OpenDocstore(context.Background(), config.Config{DocstoreDriver: "memory"}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &docstore.MemoryStore{}, store)
}

func TestOpenDocstore_Errors(t *testing.T) {
	_, err := OpenDocstore(context.Background(), config.Config{DocstoreDriver: "sqlite"}, logger.Discard())
	assert.Error(t, err)

	_, err = OpenDocstore(context.Background(), config.Config{DocstoreDriver: "firestore"}, logger.Discard())
	assert.Error(t, err)
}

func TestOpenKV_MemoryWithoutRedis(t *testing.T) {
	kv, err := OpenKV(context.Background(), config.Config{}, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), "k", 1))
	require.NoError(t, kv.Close())
}
