package grpcserver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rzbill/flake/pkg/log"
)

// requestIDMetadataKey mirrors the HTTP X-Request-ID header.
const requestIDMetadataKey = "x-request-id"

func unaryLogging(logger log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		rid := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDMetadataKey); len(v) > 0 {
				rid = v[0]
			}
		}
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx = log.ContextWithRequestID(ctx, rid)
		ctx = log.ContextWithOperation(ctx, info.FullMethod)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, rid))

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		l := logger.WithContext(ctx)
		fields := []log.Field{log.Str("code", code.String()), log.Dur("elapsed", time.Since(start))}
		switch code {
		case codes.OK:
			l.Debug("grpc request", fields...)
		case codes.Internal, codes.Unknown:
			l.Error("grpc request", append(fields, log.Err(err))...)
		default:
			l.Warn("grpc request", append(fields, log.Err(err))...)
		}
		return resp, err
	}
}

func unaryRecovery(logger log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithContext(ctx).Error("grpc handler panic", log.Str("method", info.FullMethod), log.Any("panic", r))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
