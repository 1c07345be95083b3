package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue はレジストリから指定メトリクスのカウンタ値を取り出す。
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			if len(mf.GetMetric()) != 1 {
				t.Fatalf("expected 1 metric for %s, got %d", name, len(mf.GetMetric()))
			}
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("%s metric not found", name)
	return 0
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordJobCreated_IncrementsCounter は求人作成カウンタが増加することを検証する。
func TestRecordJobCreated_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordJobCreated()
	c.RecordJobCreated()

	if val := counterValue(t, reg, "jobboard_jobs_created_total"); val != 2 {
		t.Errorf("jobs_created_total = %v, want 2", val)
	}
}

// TestRecordApplicationSubmitted_IncrementsCounter は応募カウンタが増加することを検証する。
func TestRecordApplicationSubmitted_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordApplicationSubmitted()

	if val := counterValue(t, reg, "jobboard_applications_submitted_total"); val != 1 {
		t.Errorf("applications_submitted_total = %v, want 1", val)
	}
}

// TestRecordDuplicateApplicationRejected_IncrementsCounter は重複拒否カウンタが
// 増加することを検証する。
func TestRecordDuplicateApplicationRejected_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordDuplicateApplicationRejected()
	c.RecordDuplicateApplicationRejected()
	c.RecordDuplicateApplicationRejected()

	if val := counterValue(t, reg, "jobboard_duplicate_applications_rejected_total"); val != 3 {
		t.Errorf("duplicate_applications_rejected_total = %v, want 3", val)
	}
}

// TestRecordUploadStored_AddsCount はアップロードカウンタがファイル数分増加することを検証する。
func TestRecordUploadStored_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUploadStored(3)
	c.RecordUploadStored(1)

	if val := counterValue(t, reg, "jobboard_uploads_stored_total"); val != 4 {
		t.Errorf("uploads_stored_total = %v, want 4", val)
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタが
// ラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(409)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "jobboard_http_status_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				label := m.GetLabel()[0].GetValue()
				val := m.GetCounter().GetValue()
				switch label {
				case "200":
					if val != 2 {
						t.Errorf("http_status_total{status_code=200} = %v, want 2", val)
					}
				case "409":
					if val != 1 {
						t.Errorf("http_status_total{status_code=409} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected label value: %s", label)
				}
			}
		}
	}
	if !found {
		t.Error("jobboard_http_status_total metric not found")
	}
}

// TestRecordAuthFailure_IncrementsCounterWithReason は認証失敗カウンタが
// 理由ラベル付きで増加することを検証する。
func TestRecordAuthFailure_IncrementsCounterWithReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthFailure("missing_credential")
	c.RecordAuthFailure("invalid_credential")
	c.RecordAuthFailure("invalid_credential")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range metrics {
		if mf.GetName() != "jobboard_auth_failures_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			label := m.GetLabel()[0].GetValue()
			val := m.GetCounter().GetValue()
			switch label {
			case "missing_credential":
				if val != 1 {
					t.Errorf("auth_failures_total{reason=missing_credential} = %v, want 1", val)
				}
			case "invalid_credential":
				if val != 2 {
					t.Errorf("auth_failures_total{reason=invalid_credential} = %v, want 2", val)
				}
			default:
				t.Errorf("unexpected reason label: %s", label)
			}
		}
		return
	}
	t.Error("jobboard_auth_failures_total metric not found")
}
