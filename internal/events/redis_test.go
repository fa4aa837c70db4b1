package events

import (
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisPublisherCloseLeavesClientOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	publisher := NewRedisPublisher(client, zap.NewNop())

	require.NoError(t, publisher.Close())
	// The injected client is still open; closing it here succeeds, which it
	// would not if the publisher had already closed it.
	require.NoError(t, client.Close())
}
