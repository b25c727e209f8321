package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func useTempDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:"+filepath.Join(t.TempDir(), "examhall.db")+"?_pragma=busy_timeout(5000)")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("REDIS_ADDR", "")
}

func TestInitAdminCommandIsIdempotent(t *testing.T) {
	useTempDB(t)
	t.Setenv("ADMIN_USER", "root")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	var out bytes.Buffer
	if err := runInitAdmin(context.Background(), "", &out); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if got := out.String(); !strings.Contains(got, "Admin user created") || !strings.Contains(got, "username=root") {
		t.Fatalf("unexpected output %q", got)
	}

	out.Reset()
	if err := runInitAdmin(context.Background(), "", &out); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Admin already exists" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMigrateCommand(t *testing.T) {
	useTempDB(t)
	if err := runMigrate(context.Background(), ""); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// applying twice is a no-op
	if err := runMigrate(context.Background(), ""); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	joined := strings.Join(names, ",")
	for _, want := range []string{"serve", "migrate", "init-admin"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %s in %s", want, joined)
		}
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Fatalf("--config flag not registered")
	}
}
