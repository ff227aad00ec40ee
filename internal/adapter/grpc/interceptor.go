package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/simaogato/adscope/internal/log"
)

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata.
// If the token is missing or invalid, it returns status.Unauthenticated.
// An empty validToken disables the check.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if err := authorize(ctx, validToken); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamAuthInterceptor is the streaming counterpart of AuthInterceptor
func StreamAuthInterceptor(validToken string) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if err := authorize(ss.Context(), validToken); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

func authorize(ctx context.Context, validToken string) error {
	if validToken == "" {
		return nil
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return status.Error(codes.Unauthenticated, "missing authorization header")
	}

	if authHeaders[0] != validToken {
		return status.Error(codes.Unauthenticated, "invalid token")
	}

	return nil
}

// LoggingInterceptor logs every unary call with its status code and duration
func LoggingInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	logger = logger.WithComponent(log.ComponentGRPC)
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(ctx, logger, info.FullMethod, start, err)
		return resp, err
	}
}

// StreamLoggingInterceptor logs every streaming call once it ends
func StreamLoggingInterceptor(logger *log.Logger) grpc.StreamServerInterceptor {
	logger = logger.WithComponent(log.ComponentGRPC)
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(ss.Context(), logger, info.FullMethod, start, err)
		return err
	}
}

func logCall(ctx context.Context, logger *log.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	args := []any{
		log.FieldMethod, method,
		log.FieldStatusCode, code.String(),
		log.FieldDuration, time.Since(start).Milliseconds(),
	}

	switch code {
	case codes.OK, codes.Canceled:
		logger.InfoContext(ctx, "grpc call", args...)
	case codes.Internal, codes.Unknown, codes.DataLoss:
		logger.ErrorContext(ctx, "grpc call failed", append(args, log.FieldError, err.Error())...)
	default:
		logger.WarnContext(ctx, "grpc call rejected", append(args, log.FieldError, err.Error())...)
	}
}

// RecoveryInterceptor turns a panicking handler into an Internal error
func RecoveryInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	logger = logger.WithComponent(log.ComponentGRPC)
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "panic in grpc handler",
					log.FieldMethod, info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// StreamRecoveryInterceptor is the streaming counterpart of RecoveryInterceptor
func StreamRecoveryInterceptor(logger *log.Logger) grpc.StreamServerInterceptor {
	logger = logger.WithComponent(log.ComponentGRPC)
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ss.Context(), "panic in grpc stream handler",
					log.FieldMethod, info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(srv, ss)
	}
}

// ServerOptions returns the interceptor chain used by the scope service.
// Recovery runs innermost so panics are still logged as failed calls.
func ServerOptions(apiToken string, logger *log.Logger) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(logger),
			AuthInterceptor(apiToken),
			RecoveryInterceptor(logger),
		),
		grpc.ChainStreamInterceptor(
			StreamLoggingInterceptor(logger),
			StreamAuthInterceptor(apiToken),
			StreamRecoveryInterceptor(logger),
		),
	}
}
