package engine

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	subscribeRetryDelay = 5 * time.Second
	resubscribeDelay    = time.Second
)

// subscription: то, что цикл подписки использует от *redis.PubSub.
type subscription interface {
	Receive(ctx context.Context) (interface{}, error)
	Channel(opts ...redis.ChannelOption) <-chan *redis.Message
	Close() error
}

// ListenSignals: "живучая" подписка на канал Redis.
// Переподключается после обрыва. onReconnect зовется после каждой повторной подписки,
// но не после первой: пропущенные сигналы бывают только при обрыве.
// Пустой payload передается как есть: формат сигнала решает вызывающий.
func ListenSignals(
	ctx context.Context,
	rdb *redis.Client,
	logger *zap.Logger,
	channel string,
	onReconnect func() error,
	onMessage func(payload string),
) {
	subscribe := func(ctx context.Context) subscription { return rdb.Subscribe(ctx, channel) }
	listenSignals(ctx, subscribe, logger, channel, onReconnect, onMessage)
}

func listenSignals(
	ctx context.Context,
	subscribe func(ctx context.Context) subscription,
	logger *zap.Logger,
	channel string,
	onReconnect func() error,
	onMessage func(payload string),
) {
	connected := false
	for {
		pubsub := subscribe(ctx)

		// Проверка успешности подписки
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to subscribe", zap.String("chan", channel), zap.Error(err))
			if !sleepCtx(ctx, subscribeRetryDelay) {
				return
			}
			continue
		}

		if connected && onReconnect != nil {
			if err := onReconnect(); err != nil {
				logger.Error("sync failed on reconnect", zap.Error(err))
			}
		}
		connected = true

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}
				onMessage(strings.TrimSpace(msg.Payload))
			}
		}

		pubsub.Close()
		if !sleepCtx(ctx, resubscribeDelay) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
