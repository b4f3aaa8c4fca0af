package grpc

import (
	"context"
	"errors"

	"github.com/circley-tech/storefront/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var grpcErrors = []struct {
	err  error
	code codes.Code
}{
	{e.ErrUnauthorized, codes.Unauthenticated},
	{e.ErrForbidden, codes.PermissionDenied},

	{e.ErrProductNotFound, codes.NotFound},
	{e.ErrCategoryNotFound, codes.NotFound},
	{e.ErrCustomerNotFound, codes.NotFound},
	{e.ErrCartNotFound, codes.NotFound},
	{e.ErrCartLineNotFound, codes.NotFound},
	{e.ErrOrderNotFound, codes.NotFound},
	{e.ErrPromotionNotFound, codes.NotFound},
	{e.ErrNewsNotFound, codes.NotFound},
	{e.ErrMessageNotFound, codes.NotFound},

	{e.ErrAlreadyExists, codes.AlreadyExists},
	{e.ErrInsufficientStock, codes.FailedPrecondition},
	{e.ErrInvalidOrderStatus, codes.FailedPrecondition},
	{e.ErrEmptyCart, codes.FailedPrecondition},
	{e.ErrProductInUse, codes.FailedPrecondition},
	{e.ErrCustomerInUse, codes.FailedPrecondition},

	{e.ErrStatusBadRequest, codes.InvalidArgument},
	{e.ErrInvalidID, codes.InvalidArgument},
	{e.ErrNoProducts, codes.InvalidArgument},
	{e.ErrInvalidQuantity, codes.InvalidArgument},

	{context.DeadlineExceeded, codes.DeadlineExceeded},
	{context.Canceled, codes.Canceled},
}

// GRPCErrorResponse переводит ошибку в статус gRPC. Ошибки, уже несущие статус, не меняются.
func GRPCErrorResponse(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	for _, m := range grpcErrors {
		if errors.Is(err, m.err) {
			return status.Error(m.code, m.err.Error())
		}
	}

	return status.Error(codes.Internal, e.ErrInternalServerError.Error())
}
