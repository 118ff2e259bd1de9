package services

import (
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
)

// wrapErr passes typed API errors through and marks anything else internal.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	return apierr.Internal(err)
}
