package worker

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/mahjong-booking/internal/mq"
)

// Notifier consumes booking events and delivers notifications. Real
// delivery channels (SMS, wechat) are plugged in by the operators; this
// worker logs what would be sent so the pipeline is observable end to end.
type Notifier struct {
	conn   *amqp.Connection
	logger *zap.Logger
}

func NewNotifier(conn *amqp.Connection, logger *zap.Logger) *Notifier {
	return &Notifier{
		conn:   conn,
		logger: logger,
	}
}

func (n *Notifier) Start(ctx context.Context) error {
	ch, err := mq.NewChannel(n.conn)
	if err != nil {
		return err
	}

	deliveries, err := ch.Consume(mq.BookingNotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return err
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				n.handle(delivery)
			}
		}
	}()

	return nil
}

func (n *Notifier) handle(delivery amqp.Delivery) {
	var event mq.BookingEventMessage
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		n.logger.Error("failed to decode booking event", zap.Error(err))
		delivery.Nack(false, false)
		return
	}

	for _, userID := range event.UserIDs {
		n.logger.Info("notify participant",
			zap.String("event", event.Event),
			zap.Uint("booking_id", event.BookingID),
			zap.Uint("user_id", userID),
			zap.String("note", event.Note),
		)
	}
	if len(event.UserIDs) == 0 {
		n.logger.Info("booking event",
			zap.String("event", event.Event),
			zap.String("note", event.Note),
		)
	}

	delivery.Ack(false)
}
