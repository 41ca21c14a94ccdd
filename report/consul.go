package report

import (
	"fmt"

	consul "github.com/hashicorp/consul/api"

	"github.com/webtest-hq/browser-test-harness/framework/runner"
)

// ConsulSink writes each record to the Consul KV store under
// <prefix>/<test_file>/<seq>-<test>, so record keys list in emission order.
type ConsulSink struct {
	kv     *consul.KV
	prefix string
	seq    int
}

func NewConsulSink(prefix string) (*ConsulSink, error) {
	client, err := consul.NewClient(consul.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}
	return &ConsulSink{kv: client.KV(), prefix: prefix}, nil
}

func (s *ConsulSink) Write(rec runner.Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	s.seq++
	_, err = s.kv.Put(&consul.KVPair{
		Key:   fmt.Sprintf("%s/%s/%06d-%s", s.prefix, rec.TestFile, s.seq, rec.Test),
		Value: data,
	}, nil)
	return err
}
