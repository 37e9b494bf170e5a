package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/tuanvumaihuynh/inventory-backoffice/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/cache"
	"github.com/tuanvumaihuynh/inventory-backoffice/internal/storage/db"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/validator"
	"github.com/tuanvumaihuynh/inventory-backoffice/pkg/zerror"
)

// withTimeout bounds a service operation. A non-positive timeout only adds cancellation.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// classify tags errors that left the repositories untagged, such as a failed
// BEGIN or COMMIT, so every transport failure reaches the caller as STORAGE_UNAVAILABLE.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := zerror.As(err); ok {
		return err
	}
	if db.IsUnavailable(err) {
		return apperr.StorageUnavailableErr.WrapParent(err)
	}
	return err
}

func validate(v validator.Validator, params any) error {
	if err := v.Validate(params); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}
	return nil
}

// invalidateSnapshot drops the cached dashboard once a write has committed.
// A failure leaves the snapshot stale until its TTL, so it is only logged.
func invalidateSnapshot(ctx context.Context, snapshotCache cache.SnapshotCache) {
	if err := snapshotCache.Invalidate(ctx); err != nil {
		snapshotCacheResults.WithLabelValues("invalidate_error").Inc()
		slog.WarnContext(ctx, "invalidate dashboard snapshot", slog.Any("error", err))
	}
}
