package server

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	authorizationKey = "authorization"
	bearerPrefix     = "Bearer "
	healthPrefix     = "/grpc.health.v1.Health/"
)

// LoggingInterceptor logs method, duration and status code of every call.
// Failed calls log at warn, the rest at debug.
func LoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		ev := log.Debug()
		if err != nil {
			ev = log.Warn().Str("error", status.Convert(err).Message())
		}
		ev.Str("method", info.FullMethod).
			Dur("duration", time.Since(start)).
			Str("code", status.Code(err).String()).
			Msg("rpc")
		return resp, err
	}
}

// TokenInterceptor requires "authorization: Bearer <token>" metadata.
// An empty token disables the check. Health checks are never authenticated.
func TokenInterceptor(token string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if token == "" || strings.HasPrefix(info.FullMethod, healthPrefix) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		values := md.Get(authorizationKey)
		if len(values) == 0 || !strings.HasPrefix(values[0], bearerPrefix) {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		got := strings.TrimPrefix(values[0], bearerPrefix)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return nil, status.Error(codes.Unauthenticated, "invalid bearer token")
		}
		return handler(ctx, req)
	}
}

// TimeoutInterceptor bounds every call by d unless the caller's deadline
// is sooner. d <= 0 disables it.
func TimeoutInterceptor(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if d <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}
