package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCErrorResponse переводит ошибки каталога в статусы gRPC. Уже готовые статусы не меняются.
func GRPCErrorResponse(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, e.ErrReferentialIntegrity):
		return status.Error(codes.FailedPrecondition, e.ErrReferentialIntegrity.Error())
	case errors.Is(err, e.ErrConflict):
		return status.Error(codes.AlreadyExists, e.ErrConflict.Error())
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, e.ErrNotFound.Error())
	case errors.Is(err, e.ErrValidation):
		return status.Error(codes.InvalidArgument, e.ErrValidation.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

// loggingInterceptor логирует каждый unary-вызов и нормализует ошибки.
func loggingInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			err = GRPCErrorResponse(err)
			log.Warnf("grpc %s failed in %s: %v", info.FullMethod, time.Since(start), err)
			return nil, err
		}

		log.Debugf("grpc %s ok in %s", info.FullMethod, time.Since(start))
		return resp, nil
	}
}
