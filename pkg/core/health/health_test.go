package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistry_Check(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("openscad-preview", "0.1.0")
			for i, s := range tt.statuses {
				status := s
				registry.RegisterFunc(string(rune('a'+i)), func(ctx context.Context) CheckResult {
					return CheckResult{Status: status}
				})
			}

			report := registry.Check(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.statuses) {
				t.Errorf("Checks count = %v, want %v", len(report.Checks), len(tt.statuses))
			}
			if report.Service != "openscad-preview" || report.Version != "0.1.0" {
				t.Errorf("report identity = %s %s", report.Service, report.Version)
			}
		})
	}
}

func TestRegistry_SortedAndNamed(t *testing.T) {
	registry := NewRegistry("svc", "1")
	registry.RegisterFunc("store", func(ctx context.Context) CheckResult { return CheckResult{Status: StatusHealthy} })
	registry.RegisterFunc("engine", func(ctx context.Context) CheckResult { return CheckResult{Status: StatusHealthy} })
	registry.Register(AlwaysHealthy("cache"))

	report := registry.Check(context.Background())
	names := []string{report.Checks[0].Name, report.Checks[1].Name, report.Checks[2].Name}
	if names[0] != "cache" || names[1] != "engine" || names[2] != "store" {
		t.Errorf("check order = %v", names)
	}

	registry.Unregister("store")
	if got := len(registry.Check(context.Background()).Checks); got != 2 {
		t.Errorf("after Unregister: %d checks, want 2", got)
	}
}

func TestRegistry_ConcurrentChecks(t *testing.T) {
	registry := NewRegistry("svc", "1")

	var counter int32
	for i := 0; i < 5; i++ {
		registry.RegisterFunc("check"+string(rune('A'+i)), func(ctx context.Context) CheckResult {
			atomic.AddInt32(&counter, 1)
			time.Sleep(10 * time.Millisecond)
			return CheckResult{Status: StatusHealthy}
		})
	}

	start := time.Now()
	report := registry.CheckWithTimeout(time.Second)
	duration := time.Since(start)

	if atomic.LoadInt32(&counter) != 5 {
		t.Errorf("Counter = %v, want 5", counter)
	}
	if duration > 100*time.Millisecond {
		t.Errorf("Duration = %v, expected concurrent execution", duration)
	}
	if len(report.Checks) != 5 {
		t.Errorf("Checks count = %v, want 5", len(report.Checks))
	}
}

func TestProbeCheck(t *testing.T) {
	tests := []struct {
		name  string
		slow  time.Duration
		probe func(ctx context.Context) error
		want  Status
	}{
		{"ok", 0, func(ctx context.Context) error { return nil }, StatusHealthy},
		{"failure", 0, func(ctx context.Context) error { return errors.New("db closed") }, StatusUnhealthy},
		{"slow", time.Millisecond, func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			return nil
		}, StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := ProbeCheck("engine", tt.slow, tt.probe)
			if checker.Name() != "engine" {
				t.Errorf("Name() = %v, want engine", checker.Name())
			}
			result := checker.Check(context.Background())
			if result.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", result.Status, tt.want, result.Message)
			}
		})
	}
}

func TestRegistry_Handler(t *testing.T) {
	registry := NewRegistry("svc", "1")
	registry.Register(AlwaysHealthy("engine"))

	rec := httptest.NewRecorder()
	registry.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Status != StatusHealthy || len(report.Checks) != 1 {
		t.Errorf("report = %+v", report)
	}

	registry.Register(ProbeCheck("store", 0, func(ctx context.Context) error { return errors.New("down") }))
	rec = httptest.NewRecorder()
	registry.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want 503", rec.Code)
	}
}

func TestReport_String(t *testing.T) {
	report := &Report{Service: "svc", Status: StatusHealthy, Uptime: time.Hour, Checks: []CheckResult{{}, {}}}
	want := "Service: svc, Status: healthy, Uptime: 1h0m0s, Checks: 2"
	if got := report.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
