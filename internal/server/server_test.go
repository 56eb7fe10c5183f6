package server

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywave-nav/tcgnssins/gnssgo"
	"github.com/skywave-nav/tcgnssins/internal/metrics"
)

func newTestServer() *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	reg := prometheus.NewRegistry()
	mc := metrics.NewCollector(reg)
	opt := gnssgo.DefaultPrcOpt()
	return New(opt, nil, mc, log)
}

func TestRunExitsOnClosedChannel(t *testing.T) {
	srv := newTestServer()
	in := make(chan EpochInput)
	close(in)

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), in) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit on closed channel")
	}
}

func TestRunExitsOnContextCancel(t *testing.T) {
	srv := newTestServer()
	in := make(chan EpochInput)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, in) }()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit on context cancellation")
	}
}

func TestProcessEpochSkipsEmptyObservations(t *testing.T) {
	srv := newTestServer()
	in := make(chan EpochInput, 1)
	in <- EpochInput{Obs: nil}
	close(in)
	err := srv.Run(context.Background(), in)
	require.NoError(t, err)
}
