package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"rizz-social/internal/logging"
	"rizz-social/internal/metrics"
	"rizz-social/internal/model"
	"rizz-social/internal/platform/rabbitmq"
	"rizz-social/internal/storage"
)

// ErrMalformedEvent marks a delivery that can never be processed.
var ErrMalformedEvent = errors.New("malformed content event")

type ImageDeleter interface {
	Delete(ctx context.Context, ref string) error
}

// ImageCleanupWorker consumes content events and deletes the images they
// leave unreferenced.
type ImageCleanupWorker struct {
	conn      *amqp.Connection
	images    ImageDeleter
	queueName string
	log       zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewImageCleanupWorker(conn *amqp.Connection, images ImageDeleter, queueName string) *ImageCleanupWorker {
	return &ImageCleanupWorker{
		conn:      conn,
		images:    images,
		queueName: queueName,
		log:       logging.With().Str("component", "image_cleanup_worker").Logger(),
	}
}

func (w *ImageCleanupWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	if err := ch.Qos(8, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					w.log.Warn().Msg("delivery channel closed")
					return
				}
				w.dispatch(workerCtx, d)
			}
		}
	}()

	w.log.Info().Str("queue", w.queueName).Msg("image cleanup worker started")
	return nil
}

func (w *ImageCleanupWorker) dispatch(ctx context.Context, d amqp.Delivery) {
	err := w.handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrMalformedEvent):
		w.log.Warn().Err(err).Msg("dropping malformed event")
		_ = d.Nack(false, false)
	default:
		w.log.Error().Err(err).Msg("image cleanup failed")
		_ = d.Ack(false)
	}
}

// handle processes one event body. A missing image counts as deleted.
// Only ErrMalformedEvent makes the delivery undeliverable; every other
// outcome is acked.
func (w *ImageCleanupWorker) handle(ctx context.Context, body []byte) error {
	var event model.ContentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if event.Type == "" {
		return fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	ref := event.OrphanedImage()
	if ref == "" {
		return nil
	}

	err := w.images.Delete(ctx, ref)
	switch {
	case err == nil, errors.Is(err, storage.ErrNotFound):
		metrics.ImageCleanupTotal.WithLabelValues("deleted").Inc()
		w.log.Debug().Str("event", event.Type).Str("image", ref).Msg("orphaned image deleted")
		return nil
	case errors.Is(err, storage.ErrInvalidRef):
		metrics.ImageCleanupTotal.WithLabelValues("skipped").Inc()
		w.log.Warn().Str("image", ref).Msg("event references a foreign image, skipping")
		return nil
	default:
		metrics.ImageCleanupTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("delete image %s failed: %w", ref, err)
	}
}

func (w *ImageCleanupWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
