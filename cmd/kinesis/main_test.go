package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/kinesis-dev/kinesis/internal/config"
	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
	"github.com/kinesis-dev/kinesis/pkg/kinesis"
	"github.com/kinesis-dev/kinesis/pkg/snapshot"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "initial counter",
			args: []string{"render"},
			want: "<body><p>some content: 0</p><button>decrement</button><button>increment</button><p>showing!</p></body>",
		},
		{
			name: "counter events",
			args: []string{"render", "--events", "1, 1,1"},
			want: "<body><p>some content: 3</p><button>decrement</button><button>increment</button>" +
				"<p>counting 0</p><p>counting 1</p><p>counting 2</p></body>",
		},
		{
			name: "nested",
			args: []string{"render", "-c", "nested", "-e", "1"},
			want: "child sees <span>1</span>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	if _, err := execute(t, "render", "-c", "nope"); !stderrors.Is(err, kerrors.New("K203")) {
		t.Errorf("unknown component error = %v, want K203", err)
	}
	if _, err := execute(t, "render", "-e", "1,x"); err == nil {
		t.Error("expected error for invalid event id")
	}
	if _, err := execute(t, "render", "--out", t.TempDir(), "--s3"); err == nil {
		t.Error("expected error for --out with --s3")
	}
}

func TestRenderSnapshot(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "render", "-e", "1", "--out", dir, "--name", "one")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	store, err := snapshot.NewDiskStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := store.Load(context.Background(), "one")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.TrimSpace(out) != string(snap.HTML) {
		t.Errorf("snapshot HTML = %q, printed %q", snap.HTML, out)
	}
	if snap.Component != "counter" || !slices.Equal(snap.Events, []uint32{1}) {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestParseEvents(t *testing.T) {
	got, err := parseEvents(" 0,1 ,7")
	if err != nil {
		t.Fatal(err)
	}
	if want := []kinesis.EventID{0, 1, 7}; !slices.Equal(got, want) {
		t.Errorf("parseEvents = %v, want %v", got, want)
	}
	if got, err := parseEvents(""); got != nil || err != nil {
		t.Errorf("parseEvents(\"\") = %v, %v", got, err)
	}
}

func TestServerConfig(t *testing.T) {
	cfg := config.New()
	cfg.Server.Port = 9000
	cfg.Server.Component = "nested"
	cfg.Server.WriteTimeout = "3s"

	srvCfg := serverConfig(cfg)
	if srvCfg.Address != "localhost:9000" {
		t.Errorf("Address = %q", srvCfg.Address)
	}
	if srvCfg.DefaultComponent != "nested" {
		t.Errorf("DefaultComponent = %q", srvCfg.DefaultComponent)
	}
	if srvCfg.WriteTimeout.String() != "3s" {
		t.Errorf("WriteTimeout = %v", srvCfg.WriteTimeout)
	}

	cfg.Tracing.Enabled = true
	if n := len(serverOptions(cfg, nil)); n != 3 {
		t.Errorf("serverOptions() = %d options, want 3", n)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kinesis.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8181\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181", cfg.Server.Port)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}
