package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rizz-social/internal/logging"
	"rizz-social/internal/model"
	"rizz-social/internal/storage"
)

// media bundles the image store and event publisher shared by the post and
// profile services. The publisher may be nil.
type media struct {
	images    ImageStore
	publisher EventPublisher
}

func (m media) saveImage(ctx context.Context, upload *storage.Upload) (*string, error) {
	if upload == nil {
		return nil, nil
	}
	if m.images == nil {
		return nil, fmt.Errorf("%w: image uploads are not configured", ErrInvalidImage)
	}
	ref, err := m.images.Save(ctx, *upload)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) ||
			errors.Is(err, storage.ErrImageTooLarge) ||
			errors.Is(err, storage.ErrEmptyImage) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		return nil, err
	}
	return &ref, nil
}

// discardImage removes an image whose row was never written.
func (m media) discardImage(ctx context.Context, ref *string) {
	if ref == nil || m.images == nil {
		return
	}
	if err := m.images.Delete(context.WithoutCancel(ctx), *ref); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("image", *ref).Msg("discard unreferenced image failed")
	}
}

// publish never fails the caller; the change is already committed.
func (m media) publish(ctx context.Context, event model.ContentEvent) {
	if m.publisher == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	if err := m.publisher.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("event", event.Type).Msg("publish content event failed")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
