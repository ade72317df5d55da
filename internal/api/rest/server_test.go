package rest

import (
	"context"
	"testing"
	"time"

	"github.com/Dhoini/storefront-billing/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestStartReturnsNilAfterGracefulShutdown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(gin.New(), "0", logger.New(logger.FATAL))

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	// Даем серверу начать слушать порт
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		require.NoError(t, err, "graceful shutdown must not surface as a start error")
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}
