package grpc

import (
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC statuses. Known errors keep their
// fixed public message; anything else becomes a bare Internal.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrUsernameTaken):
		return status.Error(codes.AlreadyExists, common.ErrUsernameTaken.Error())
	case errors.Is(err, common.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, common.ErrEmailTaken.Error())
	case errors.Is(err, common.ErrVersionConflict):
		return status.Error(codes.Aborted, common.ErrVersionConflict.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrAlreadyLoggedOut),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrMissingToken):
		return status.Error(codes.Unauthenticated, publicMessage(err))
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

func publicMessage(err error) string {
	for _, known := range []error{
		common.ErrInvalidCredentials,
		common.ErrAlreadyLoggedOut,
		common.ErrInvalidToken,
		common.ErrMissingToken,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return err.Error()
}
