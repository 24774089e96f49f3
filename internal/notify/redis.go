package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis broadcasts change notifications through Redis pub/sub so separate
// station processes stay in sync. Every instance tags outgoing messages with
// its origin id and ignores its own publishes; the publishing process already
// holds the fresh state.
type Redis struct {
	rdb    *goredis.Client
	origin string
	lg     *zap.SugaredLogger
}

type wireMessage struct {
	Origin string `json:"origin"`
	Message
}

func NewRedis(addr, password string, db int, lg *zap.SugaredLogger) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	if lg == nil {
		lg = zap.NewNop().Sugar()
	}
	return &Redis{rdb: rdb, origin: uuid.NewString(), lg: lg}, nil
}

func (r *Redis) Publish(ctx context.Context, channel string, msg Message) error {
	raw, err := json.Marshal(wireMessage{Origin: r.origin, Message: msg})
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, channel, raw).Err()
}

func (r *Redis) Subscribe(ctx context.Context, channel string, fn func(Message)) (func(), error) {
	ps := r.rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	go func() {
		for m := range ps.Channel() {
			var wm wireMessage
			if err := json.Unmarshal([]byte(m.Payload), &wm); err != nil {
				r.lg.Debugw("notify: bad payload", "channel", channel, "error", err)
				continue
			}
			if wm.Origin == r.origin {
				continue
			}
			fn(wm.Message)
		}
	}()
	return func() { _ = ps.Close() }, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
