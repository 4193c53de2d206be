package bridge

import (
	"errors"

	"github.com/bnema/mwa-bridge/internal/adapters/channel"
	"github.com/bnema/mwa-bridge/internal/domain"
)

const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInvalidSession  = "INVALID_SESSION"
	CodeLaunchFailed    = "LAUNCH_FAILED"
)

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, domain.ErrInvalidSession):
		return CodeInvalidSession
	case errors.Is(err, domain.ErrLaunchFailed):
		return CodeLaunchFailed
	default:
		return channel.CodeInternal
	}
}

func replyError(result channel.Result, err error) {
	result.Error(errorCode(err), err.Error())
}
