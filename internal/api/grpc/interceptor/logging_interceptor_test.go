package interceptor

import (
	"bytes"
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lendlocal-backend/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger.InitializeWithWriter(&buf, "debug", "text")
	t.Cleanup(func() { logger.Initialize("info", "text") })

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	intercept := Logging()

	t.Run("Success passes the response through", func(t *testing.T) {
		resp, err := intercept(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return "resp", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "resp", resp)
		assert.Contains(t, buf.String(), "code=OK")
	})

	t.Run("Failure keeps the status", func(t *testing.T) {
		buf.Reset()
		_, err := intercept(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return nil, status.Error(codes.NotFound, "unknown service")
		})
		assert.Equal(t, codes.NotFound, status.Code(err))
		assert.Contains(t, buf.String(), "gRPC call failed")
		assert.Contains(t, buf.String(), "code=NotFound")
	})
}
