//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "figure-order-api"
	ConsumerName = "figure-storefront"

	StateOrdersBaseline = "orders baseline"
	StateOrderExists    = "order 7b9e exists"
	StateOrderMissing   = "no order with the requested id"
	StateStockSeeded    = "stock counters seeded"
)

const (
	ExistingOrderID = "7b9e4c1a-2f63-4b8e-9d15-0a47c8b2e901"
	MissingOrderID  = "00000000-0000-0000-0000-000000000000"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCartPayload provides stable test data for submission interactions.
func ExampleCartPayload() map[string]any {
	return map[string]any{
		"positions": []map[string]any{
			{"figureType": "triangle", "sideA": 3.0, "sideB": 4.0, "sideC": 5.0, "count": 1},
			{"figureType": "circle", "sideA": 2.0, "count": 2},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
