package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PremHer/kasvarealty-sub001/internal/presentation/access"
)

var kindCodes = map[access.Kind]codes.Code{
	access.KindInvalid:          codes.InvalidArgument,
	access.KindPrecondition:     codes.FailedPrecondition,
	access.KindNotFound:         codes.NotFound,
	access.KindConflict:         codes.Aborted,
	access.KindUnauthenticated:  codes.Unauthenticated,
	access.KindPermissionDenied: codes.PermissionDenied,
	access.KindTimeout:          codes.DeadlineExceeded,
}

// toStatus maps err to a gRPC status. Internal failures are logged and
// reported without detail.
func (h *InstallmentHandler) toStatus(ctx context.Context, err error) error {
	kind, code := access.Classify(err)
	if c, ok := kindCodes[kind]; ok {
		return status.Errorf(c, "%s: %v", code, err)
	}
	h.logger.ErrorContext(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
