package report

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// RedisSink appends each record to a Redis list keyed by test file, so a
// shared results store sees records in emission order.
type RedisSink struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisSink(addr, keyPrefix string) *RedisSink {
	return &RedisSink{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		keyPrefix: keyPrefix,
	}
}

func (s *RedisSink) DSN() string {
	return fmt.Sprintf("redis://%s", s.client.Options().Addr)
}

func (s *RedisSink) Write(rec runner.Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	ctx := context.Background()
	return s.client.RPush(ctx, s.key(rec), data).Err()
}

// Records reads back everything written for a test file, in order.
func (s *RedisSink) Records(testFile string) ([]runner.Record, error) {
	ctx := context.Background()
	items, err := s.client.LRange(ctx, s.keyPrefix+":"+testFile, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	var ret []runner.Record
	for _, item := range items {
		recs, err := DecodeRecords([]byte("[" + item + "]"))
		if err != nil {
			return nil, err
		}
		ret = append(ret, recs...)
	}
	return ret, nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}

func (s *RedisSink) key(rec runner.Record) string {
	return s.keyPrefix + ":" + rec.TestFile
}
