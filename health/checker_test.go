package health

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusUnhealthy, "unhealthy"},
		{StatusNotConfigured, "not_connected"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnhealthy_ClassifiesError(t *testing.T) {
	r := Unhealthy("down", ConnectionFault("dial", errors.New("refused")))

	if r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", r.Status, StatusUnhealthy)
	}
	if r.Fault != FaultConnection {
		t.Errorf("Fault = %v, want %v", r.Fault, FaultConnection)
	}
	if r.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestResult_ResponseTimeMs(t *testing.T) {
	r := Healthy().WithDuration(1500 * time.Microsecond)
	if got := r.ResponseTimeMs(); got != 1.5 {
		t.Errorf("ResponseTimeMs() = %v, want 1.5", got)
	}
}

func decodeResult(t *testing.T, r Result) map[string]any {
	t.Helper()
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return out
}

func TestResult_MarshalJSON_Healthy(t *testing.T) {
	r := Healthy().WithDuration(2 * time.Millisecond).WithDetails(map[string]any{"cpu_percent": 12.5})
	out := decodeResult(t, r)

	if out["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", out["status"])
	}
	if out["response_time_ms"] != 2.0 {
		t.Errorf("response_time_ms = %v, want 2", out["response_time_ms"])
	}
	if out["cpu_percent"] != 12.5 {
		t.Errorf("cpu_percent = %v, want 12.5", out["cpu_percent"])
	}
	if _, ok := out["message"]; ok {
		t.Error("healthy result should not carry a message")
	}
	if _, ok := out["fault"]; ok {
		t.Error("healthy result should not carry a fault")
	}
}

func TestResult_MarshalJSON_NotConfigured(t *testing.T) {
	out := decodeResult(t, NotConfigured(""))

	if len(out) != 1 {
		t.Errorf("not_connected JSON = %v, want only status", out)
	}
	if out["status"] != "not_connected" {
		t.Errorf("status = %v, want not_connected", out["status"])
	}
}

func TestResult_MarshalJSON_Unhealthy(t *testing.T) {
	tests := []struct {
		name      string
		result    Result
		wantFault any
	}{
		{
			name:      "raised",
			result:    Unhealthy("timed out", TimeoutFault("", ErrCheckTimeout)),
			wantFault: "timeout",
		},
		{
			name:      "message only",
			result:    Unhealthy("Cache read/write failed", nil),
			wantFault: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := decodeResult(t, tt.result)
			if out["status"] != "unhealthy" {
				t.Errorf("status = %v, want unhealthy", out["status"])
			}
			if out["message"] != tt.result.Message {
				t.Errorf("message = %v, want %v", out["message"], tt.result.Message)
			}
			if out["fault"] != tt.wantFault {
				t.Errorf("fault = %v, want %v", out["fault"], tt.wantFault)
			}
		})
	}
}

func TestAggregateResult_Unhealthy(t *testing.T) {
	results := AggregateResult{
		"a": Healthy(),
		"b": Unhealthy("down", nil),
		"c": NotConfigured(""),
	}

	names := results.Unhealthy()
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("Unhealthy() = %v, want [b]", names)
	}
}
