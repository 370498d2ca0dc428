package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockStorePinger struct {
	err error
}

func (m *mockStorePinger) Ping(_ context.Context) error { return m.err }

type mockModelChecker struct {
	err error
}

func (m *mockModelChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockModelChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["store"] != CheckOK {
		t.Errorf("expected store %q, got %q", CheckOK, r.Checks["store"])
	}
	if r.Checks["model"] != CheckOK {
		t.Errorf("expected model %q, got %q", CheckOK, r.Checks["model"])
	}
}

func TestCheck_StoreError(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("conn refused")}, &mockModelChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["store"] != CheckError {
		t.Errorf("expected store %q, got %q", CheckError, r.Checks["store"])
	}
	if r.Checks["model"] != CheckOK {
		t.Errorf("expected model %q, got %q", CheckOK, r.Checks["model"])
	}
}

func TestCheck_ModelError(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockModelChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["model"] != CheckError {
		t.Errorf("expected model %q, got %q", CheckError, r.Checks["model"])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockStorePinger{err: errors.New("store down")},
		&mockModelChecker{err: errors.New("model down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["store"] != CheckError {
		t.Error("expected store error")
	}
	if r.Checks["model"] != CheckError {
		t.Error("expected model error")
	}
}

func TestCheck_NoModel(t *testing.T) {
	svc := New(&mockStorePinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["model"]; ok {
		t.Error("model check should be absent when model is nil")
	}
}

func TestCheck_NoModel_StoreError(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("fail")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["store"] != CheckError {
		t.Error("expected store error")
	}
}
