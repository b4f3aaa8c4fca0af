package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/jitter"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	outboxChannel     = "outbox_pending"
	notifyWaitTimeout = 30 * time.Second
	pollInterval      = time.Minute
)

var reconnectBackoff = jitter.NewBackoff(time.Second, 30*time.Second)

// OutboxWorker публикует события outbox в Kafka. Очередь разбирается при старте,
// по NOTIFY outbox_pending и раз в pollInterval на случай потерянного уведомления.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	batchSize int
	dbConnStr string

	kick chan struct{}
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	batchSize int,
	dbConnStr string,
) *OutboxWorker {
	if batchSize <= 0 {
		batchSize = 10
	}

	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		batchSize: batchSize,
		dbConnStr: dbConnStr,
		kick:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	if w.dbConnStr == "" {
		return
	}

	listenCtx, cancel := context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()
		w.listen(listenCtx)
	}()

	// WaitForNotification не знает про stop, поэтому обрываем ожидание через контекст.
	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-listenCtx.Done():
		}
	}()
}

// Stop останавливает воркер и ждёт завершения текущей пачки.
func (w *OutboxWorker) Stop(_ context.Context) error {
	w.once.Do(func() { close(w.stop) })
	w.wg.Wait()
	return nil
}

// Notify просит воркер разобрать очередь вне расписания.
func (w *OutboxWorker) Notify() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *OutboxWorker) run(ctx context.Context) {
	w.logger.Infof("draining pending outbox events on startup")
	w.drain(ctx)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-w.kick:
			w.drain(ctx)
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain обрабатывает пачки, пока очередь не опустеет или публикация не начнёт падать.
func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		processed, failed, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("outbox batch failed: %v", err)
			return
		}
		if processed == 0 || failed > 0 {
			return
		}
	}
}

// processBatch забирает пачку событий и публикует их по порядку. Неопубликованные
// события возвращаются в очередь.
func (w *OutboxWorker) processBatch(ctx context.Context) (processed int, failed int, err error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize)
	if err != nil {
		return 0, 0, err
	}

	for i, event := range events {
		if err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event)); err != nil {
			w.logger.Warnf("publish event %s (order %d) failed, retryable=%t: %v",
				event.EventID, event.OrderID, isRetryableError(err), err)

			// Последующие события того же заказа не должны обогнать неотправленное.
			w.release(ctx, events[i:])
			return processed, len(events) - i, nil
		}

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
		processed++
	}

	return processed, 0, nil
}

func (w *OutboxWorker) release(ctx context.Context, events []*usecase.OutboxEvent) {
	for _, event := range events {
		if err := w.repo.Release(context.WithoutCancel(ctx), event.ID); err != nil {
			w.logger.Warnf("release event %d failed: %v", event.ID, err)
		}
	}
}

func (w *OutboxWorker) listen(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		err := w.listenOnce(ctx)
		if err == nil {
			return
		}

		delay := reconnectBackoff.Delay(attempt)
		w.logger.Warnf("outbox listener lost connection: %v, reconnecting in %s", err, delay)

		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-time.After(delay):
		}
	}
}

// listenOnce держит LISTEN-соединение; nil означает штатную остановку.
func (w *OutboxWorker) listenOnce(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, w.dbConnStr)
	if err != nil {
		return e.Wrap("failed to connect for LISTEN", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, "LISTEN "+outboxChannel); err != nil {
		return e.Wrap("failed to LISTEN", err)
	}

	w.logger.Infof("subscribed to %q channel", outboxChannel)
	// После переподключения могли пропустить уведомления.
	w.Notify()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stop:
			return nil
		default:
		}

		waitCtx, cancel := context.WithTimeout(ctx, notifyWaitTimeout)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}

		if notif != nil && notif.Channel == outboxChannel {
			w.logger.Debugf("received outbox notification")
			w.Notify()
		}
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection reset",
		"broken pipe",
		"no such host",
	} {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
