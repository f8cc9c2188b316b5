package assets

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/crucial707/inventory/cmd/cli/config"
	"github.com/crucial707/inventory/cmd/cli/root"
	appconfig "github.com/crucial707/inventory/internal/config"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/repo/memstore"
	"github.com/crucial707/inventory/internal/service"
)

// seeded points config.Open at an in-memory store with two assets.
func seeded(t *testing.T) *service.Inventory {
	t.Helper()

	stores := memstore.NewStores(nil)
	sess := config.NewSession(appconfig.Config{StoreDriver: appconfig.StoreMemory}, stores, nil, nil)
	ctx := context.Background()

	if _, err := sess.Svc.CreateAsset(ctx, models.Asset{ID: "lt001", EquipmentType: models.EquipmentLaptop, Brand: "Dell", Area: "Finance"}, "admin@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := sess.Svc.CreateAsset(ctx, models.Asset{ID: "mn001", EquipmentType: models.EquipmentMonitor, Brand: "LG", Status: models.StatusInRepair}, "admin@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	old := config.Open
	config.Open = func(context.Context) (*config.Session, error) { return sess, nil }
	t.Cleanup(func() { config.Open = old })
	return sess.Svc
}

// execute runs args against a fresh command tree and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := root.New()
	InitAssets(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestListAssets_TableOutput(t *testing.T) {
	seeded(t)

	out, err := execute(t, "assets", "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "LT001") || !strings.Contains(out, "MN001") {
		t.Fatalf("expected asset ids in output, got: %s", out)
	}
}

func TestListAssets_FilterAndJSONOutput(t *testing.T) {
	seeded(t)

	out, err := execute(t, "assets", "list", "--status", "InRepair", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"id": "MN001"`) || !strings.Contains(out, `"total": 1`) {
		t.Fatalf("expected filtered JSON output, got: %s", out)
	}
	if strings.Contains(out, "LT001") {
		t.Fatalf("filter did not apply: %s", out)
	}
}

func TestShowAsset(t *testing.T) {
	seeded(t)

	out, err := execute(t, "assets", "show", "lt001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Dell") || !strings.Contains(out, "InWarehouse") {
		t.Fatalf("expected asset fields, got: %s", out)
	}

	if _, err := execute(t, "assets", "show", "nope"); err == nil {
		t.Fatal("expected an error for a missing asset")
	}
}

func TestHistory(t *testing.T) {
	svc := seeded(t)
	if _, err := svc.UpdateAsset(context.Background(), "LT001", models.AssetPatch{Area: models.Ptr("Sales")}, "ops@example.com"); err != nil {
		t.Fatalf("update: %v", err)
	}

	out, err := execute(t, "assets", "history", "lt001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Asset LT001 created", "Modified: area", "ops@example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}

	out, err = execute(t, "assets", "history", "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No history for GHOST") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestStats(t *testing.T) {
	seeded(t)

	out, err := execute(t, "stats", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"total": 2`) || !strings.Contains(out, `"InRepair": 1`) {
		t.Fatalf("unexpected stats: %s", out)
	}

	out, err = execute(t, "stats")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "EQUIPMENT TYPE") || !strings.Contains(out, "Laptop") {
		t.Fatalf("unexpected stats table: %s", out)
	}
}

func TestCountRows_SortsByCountThenKey(t *testing.T) {
	rows := countRows(map[string]int{"b": 1, "a": 1, "c": 3})
	got := []interface{}{rows[0][0], rows[1][0], rows[2][0]}
	want := []interface{}{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
