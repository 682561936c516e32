package utils

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
)

func TestRecordCashFenceOperation(t *testing.T) {
	m := GetMetrics()

	before := testutil.ToFloat64(m.operationsTotal.WithLabelValues("close", "error"))
	closedBefore := testutil.ToFloat64(m.closedFences)
	errorsBefore := m.GetMetricsSnapshot()["error_count"].(int64)

	m.RecordCashFenceOperation("close", errors.New("boom"))
	m.RecordCashFenceOperation("close", nil)

	if got := testutil.ToFloat64(m.operationsTotal.WithLabelValues("close", "error")); got != before+1 {
		t.Errorf("unexpected error counter: got %v want %v", got, before+1)
	}
	if got := testutil.ToFloat64(m.closedFences); got != closedBefore+1 {
		t.Errorf("unexpected closed counter: got %v want %v", got, closedBefore+1)
	}
	if got := m.GetMetricsSnapshot()["error_count"].(int64); got != errorsBefore+1 {
		t.Errorf("unexpected error count: got %v want %v", got, errorsBefore+1)
	}
}

func TestLogOperationRecordsMetrics(t *testing.T) {
	m := GetMetrics()
	before := testutil.ToFloat64(m.operationsTotal.WithLabelValues("fetch", "ok"))

	LogOperation("fetch", time.Now(), nil)

	if got := testutil.ToFloat64(m.operationsTotal.WithLabelValues("fetch", "ok")); got != before+1 {
		t.Errorf("unexpected fetch counter: got %v want %v", got, before+1)
	}
}

func TestInitLoggerLevel(t *testing.T) {
	if err := InitLogger("debug", ""); err != nil {
		t.Fatal(err)
	}
	if !Log.IsLevelEnabled(logrus.DebugLevel) {
		t.Error("debug level must be enabled")
	}

	dir := t.TempDir()
	if err := InitLogger("not-a-level", dir); err != nil {
		t.Fatal(err)
	}
	defer Log.SetOutput(os.Stdout)
	LogInfo("written to %s", dir)
	LogDebug("filtered out at info level")
}
