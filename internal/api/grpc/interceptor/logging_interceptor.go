package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"lendlocal-backend/internal/logger"
)

// Logging returns a unary interceptor that logs every RPC with its status
// code and latency. Health checks are frequent, so successful calls log at
// debug level.
func Logging() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		if err != nil {
			logger.WarnContext(ctx, "gRPC call failed", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start), "error", err)
			return resp, err
		}
		logger.DebugContext(ctx, "gRPC call", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
		return resp, nil
	}
}
