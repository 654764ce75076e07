package redis

import (
	"context"
	"testing"

	"github.com/samaraie/linktree-backend/config"
	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	opts := Options(&config.RedisConfig{Host: "cache", Port: "6380", Password: "pw", DB: 2})

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestPingWithoutInit(t *testing.T) {
	assert.Error(t, Ping(context.Background()))
	assert.NoError(t, Close())
}
