package grpc

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type fakePinger struct {
	fail atomic.Bool
}

func (p *fakePinger) PingContext(context.Context) error {
	if p.fail.Load() {
		return errors.New("db down")
	}
	return nil
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, &fakePinger{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func healthStatus(t *testing.T, s *GRPCServer, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("health check error: %v", err)
	}
	return resp.GetStatus()
}

func TestCheckOnce_FollowsPinger(t *testing.T) {
	p := &fakePinger{}
	s := NewGRPCServer("", logging.Nop{}, p, time.Second)

	if got := s.checkOnce(context.Background()); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("want SERVING, got %v", got)
	}
	if got := healthStatus(t, s, ServiceName); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("want SERVING for %q, got %v", ServiceName, got)
	}

	p.fail.Store(true)
	s.checkOnce(context.Background())
	if got := healthStatus(t, s, ""); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("want NOT_SERVING, got %v", got)
	}
}

func TestWatch_RechecksOnInterval(t *testing.T) {
	p := &fakePinger{}
	s := NewGRPCServer("", logging.Nop{}, p, 10*time.Millisecond)
	s.checkOnce(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.watch(ctx)

	p.fail.Store(true)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if healthStatus(t, s, "") == healthpb.HealthCheckResponse_NOT_SERVING {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("status never flipped to NOT_SERVING")
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	s := NewGRPCServer("", logging.NewJSON(&buf, "debug"), nil, 0)

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Fatalf("unexpected result: %v, %v", resp, err)
	}

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte(`"method":"/grpc.health.v1.Health/Check"`)) || !bytes.Contains([]byte(out), []byte(`"code":"OK"`)) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	s := NewGRPCServer("", logging.Nop{}, nil, 0)
	info := &grpc.UnaryServerInfo{FullMethod: "/x/Y"}

	_, err := s.recoveryInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("kaboom")
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("want codes.Internal, got %v", err)
	}

	resp, err := s.recoveryInterceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return 1, nil
	})
	if err != nil || resp != 1 {
		t.Fatalf("unexpected result: %v, %v", resp, err)
	}
}
