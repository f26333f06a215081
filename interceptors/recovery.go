package interceptors

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecoveryInterceptor turns a panicking handler into codes.Internal, the
// gRPC counterpart of filters.Recovery.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return recovery.UnaryServerInterceptor(recovery.WithRecoveryHandler(func(p any) error {
		logger.Error("Recovered from panic", zap.Any("panic", p), zap.Stack("stack"))
		return status.Error(codes.Internal, "Internal server error")
	}))
}
