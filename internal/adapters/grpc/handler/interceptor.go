package handler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryLoggingInterceptor はメソッド名・ステータスコード・処理時間を記録します。
func UnaryLoggingInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := next(ctx, req)

		code := status.Code(err)
		entry := log.WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"code":       code.String(),
			"latency_ms": time.Since(started).Milliseconds(),
		})
		switch code {
		case codes.OK:
			entry.Info("rpc completed")
		case codes.Internal, codes.Unavailable, codes.Unknown:
			entry.WithError(err).Error("rpc failed")
		default:
			entry.WithError(err).Warn("rpc rejected")
		}
		return resp, err
	}
}
