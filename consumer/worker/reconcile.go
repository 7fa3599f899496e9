package worker

import (
	"context"
	"time"

	"github.com/tnqbao/gau-photobooth/infra"
)

// ObjectLister is the slice of the object store the reconciler needs.
type ObjectLister interface {
	ListObjects(ctx context.Context) ([]infra.ObjectInfo, error)
	RemoveObject(ctx context.Context, key string) error
}

// MetadataProbe checks whether an object key is referenced by a photo row.
type MetadataProbe interface {
	ExistsByImageName(imageName string) (bool, error)
}

// Reconciler sweeps the bucket for orphaned binaries: objects written by an
// upload whose metadata insert never succeeded. Objects younger than the
// grace period are skipped because their upload may still be in flight
// between the two store writes.
type Reconciler struct {
	storage     ObjectLister
	photos      MetadataProbe
	logger      *infra.LoggerClient
	interval    time.Duration
	gracePeriod time.Duration
}

func NewReconciler(storage ObjectLister, photos MetadataProbe, logger *infra.LoggerClient, interval, gracePeriod time.Duration) *Reconciler {
	return &Reconciler{
		storage:     storage,
		photos:      photos,
		logger:      logger,
		interval:    interval,
		gracePeriod: gracePeriod,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		r.logger.InfoWithContextf(ctx, "[Reconciler] Started, interval: %s, grace period: %s", r.interval, r.gracePeriod)

		for {
			select {
			case <-ctx.Done():
				r.logger.InfoWithContextf(ctx, "[Reconciler] Shutting down...")
				return
			case <-ticker.C:
				removed, err := r.Reconcile(ctx)
				if err != nil {
					r.logger.ErrorWithContextf(ctx, err, "[Reconciler] Sweep failed: %v", err)
					continue
				}
				if removed > 0 {
					r.logger.InfoWithContextf(ctx, "[Reconciler] Removed %d orphaned objects", removed)
				}
			}
		}
	}()
}

// Reconcile runs a single sweep and returns how many orphans were removed.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	objects, err := r.storage.ListObjects(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-r.gracePeriod)
	removed := 0

	for _, object := range objects {
		if object.LastModified.After(cutoff) {
			continue
		}

		exists, err := r.photos.ExistsByImageName(object.Key)
		if err != nil {
			r.logger.ErrorWithContextf(ctx, err, "[Reconciler] Metadata probe for %q failed: %v", object.Key, err)
			continue
		}
		if exists {
			continue
		}

		if err := r.storage.RemoveObject(ctx, object.Key); err != nil {
			r.logger.ErrorWithContextf(ctx, err, "[Reconciler] Failed to remove orphan %q: %v", object.Key, err)
			continue
		}

		r.logger.InfoWithContextf(ctx, "[Reconciler] Removed orphaned object: %s", object.Key)
		removed++
	}

	return removed, nil
}
