package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/unclebandit/purchase-mailchimp-sync/internal/app"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/config"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/db"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/logger"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/model"
	"github.com/unclebandit/purchase-mailchimp-sync/internal/service"
)

func main() {
	cfg, err := config.LoadForWorker()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to DB
	conn, err := db.Open(ctx, cfg.Database.URL, zl)
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	a := app.New(cfg, conn, zl)

	// Connect to RabbitMQ
	mq, err := amqp.Dial(cfg.AMQP.URL)
	if err != nil {
		zl.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer mq.Close()

	ch, err := mq.Channel()
	if err != nil {
		zl.Fatal("failed to open a channel", zap.Error(err))
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.AMQP.Queue, // name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		zl.Fatal("failed to declare queue", zap.Error(err))
	}

	// one event at a time, in order
	if err := ch.Qos(1, 0, false); err != nil {
		zl.Fatal("failed to set qos", zap.Error(err))
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false, acked after hand-off to the worker
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		zl.Fatal("failed to register consumer", zap.Error(err))
	}

	jobs := make(chan model.RecordSavedEvent)
	worker := service.NewWorker(a.Hooks, jobs, logger.Sync(zl))
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	zl.Info("worker running, waiting for record events", zap.String("queue", q.Name))
	consume(ctx, msgs, jobs, zl)
	close(jobs)
	<-done
}

// consume hands each delivery to the worker and always acks: failed syncs are
// not retried, the next manual resync picks them up.
func consume(ctx context.Context, msgs <-chan amqp.Delivery, jobs chan<- model.RecordSavedEvent, zl *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				zl.Warn("delivery channel closed")
				return
			}
			ev, err := decodeEvent(d.Body)
			if err != nil {
				zl.Warn("invalid record event", zap.Error(err))
				_ = d.Ack(false)
				continue
			}
			select {
			case jobs <- ev:
			case <-ctx.Done():
				_ = d.Nack(false, true)
				return
			}
			_ = d.Ack(false)
		}
	}
}

func decodeEvent(body []byte) (model.RecordSavedEvent, error) {
	var ev model.RecordSavedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, err
	}
	if ev.Template == "" || ev.ID <= 0 {
		return ev, fmt.Errorf("event needs template and id, got %s", string(body))
	}
	return ev, nil
}
