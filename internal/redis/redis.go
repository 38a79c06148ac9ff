package redis

import (
	"context"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type Client struct {
	*goredis.Client
}

// New connects to redis and verifies the connection with a short ping.
// addr accepts either a redis:// URL or a plain host:port.
func New(addr, password string) (*Client, error) {
	var client *goredis.Client

	if strings.HasPrefix(addr, "redis://") {
		opt, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		client = goredis.NewClient(opt)
	} else {
		client = goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{Client: client}, nil
}
