package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"docquery/internal/model"
	"docquery/internal/repository"
)

// IngestionEventWorker drains the ingest audit queue and persists events.
// Uploads publish and move on; this is the only consumer.
type IngestionEventWorker struct {
	conn      *amqp.Connection
	repo      *repository.IngestionEventRepository
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIngestionEventWorker(conn *amqp.Connection, repo *repository.IngestionEventRepository, queueName string) *IngestionEventWorker {
	return &IngestionEventWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
	}
}

func (w *IngestionEventWorker) Start(ctx context.Context) error {
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

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
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
					return
				}

				var event model.IngestionEvent
				if err := json.Unmarshal(d.Body, &event); err != nil {
					log.Printf("worker decode ingestion event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := w.repo.Create(&event); err != nil {
					log.Printf("worker persist ingestion event failed: %v", err)
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *IngestionEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
