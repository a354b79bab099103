package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestIndexModels(t *testing.T) {
	models := IndexModels()

	require.Contains(t, models, MessagesCollection)
	require.Contains(t, models, ItemsCollection)

	first := models[MessagesCollection][0].Keys.(bson.D)
	assert.Equal(t, "conversation", first[0].Key)
	assert.Equal(t, "createdAt", first[1].Key)

	text := models[ItemsCollection][0]
	require.NotNil(t, text.Options)
	assert.Equal(t, "item_text", *text.Options.Name)
	assert.Equal(t, bson.D{{Key: "title", Value: 3}, {Key: "tags", Value: 2}, {Key: "description", Value: 1}}, text.Options.Weights)
}

func TestConnect_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri, "droplink_test")
	require.NoError(t, err)
	defer client.Close(ctx)

	assert.NotNil(t, client.GridFS)
	assert.NoError(t, client.EnsureIndexes(ctx))
}
