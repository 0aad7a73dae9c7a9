package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yahya12213/certgen/fetch"
	"github.com/yahya12213/certgen/variables"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Render.Locale != "fr" || cfg.Render.MaxFetchBytes != fetch.DefaultMaxBytes {
		t.Fatalf("render defaults = %+v", cfg.Render)
	}
	if cfg.Server.Addr != ":8080" || cfg.Log.Format != "text" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certgen.yaml")
	data := `render:
  base_url: https://backoffice.example.com
  locale: en
  fetch_timeout: 5s
fonts:
  catalog_path: fonts.yaml
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.BaseURL != "https://backoffice.example.com" || cfg.Render.FetchTimeout != 5*time.Second {
		t.Fatalf("render = %+v", cfg.Render)
	}
	if cfg.Render.LocaleValue() != variables.English {
		t.Fatal("locale not applied")
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unset fields must keep their defaults, addr = %q", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Fatalf("log = %+v", cfg.Log)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/certgen.yaml"); err == nil {
		t.Fatal("expected error for a missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("render:\n  locale: [fr\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoadOrDefault(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := LoadOrDefault(path)
		if err != nil || cfg.Server.Addr != ":8080" {
			t.Fatalf("LoadOrDefault(%q) = %+v, %v", path, cfg, err)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "certgen.yaml")
	cfg := Default()
	cfg.Render.AssetDir = "/srv/uploads"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Fatalf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CERTGEN_BASE_URL", "http://localhost:3001")
	t.Setenv("CERTGEN_FETCH_TIMEOUT", "2s")
	t.Setenv("CERTGEN_MAX_FETCH_BYTES", "not-a-number")
	t.Setenv("CERTGEN_MAX_BATCH", "20")
	t.Setenv("CERTGEN_LOG_FORMAT", "json")
	t.Setenv("PORT", "9090")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Render.BaseURL != "http://localhost:3001" || cfg.Render.FetchTimeout != 2*time.Second {
		t.Fatalf("render = %+v", cfg.Render)
	}
	if cfg.Render.MaxFetchBytes != fetch.DefaultMaxBytes {
		t.Fatal("an unparsable value must be ignored")
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.MaxBatch != 20 {
		t.Fatalf("server = %+v", cfg.Server)
	}

	t.Setenv("CERTGEN_ADDR", "127.0.0.1:7000")
	cfg.ApplyEnv()
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Fatalf("CERTGEN_ADDR must win over PORT, got %q", cfg.Server.Addr)
	}
}

func TestFetcherReadsAssetDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "logo.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := RenderConfig{AssetDir: dir}.Fetcher()
	data, err := f.Fetch(context.Background(), "/logo.png")
	if err != nil || string(data) != "png" {
		t.Fatalf("Fetch = %q, %v", data, err)
	}
	if _, err := (RenderConfig{}).Fetcher().Fetch(context.Background(), "/logo.png"); err == nil {
		t.Fatal("local files must be rejected without an asset dir")
	}
}

func TestFontProvider(t *testing.T) {
	cfg := Default()
	if p, err := cfg.FontProvider(nil); p != nil || err != nil {
		t.Fatalf("no catalog = %v, %v", p, err)
	}
	cfg.Fonts.CatalogURL = "https://backoffice.example.com/api/fonts"
	p, err := cfg.FontProvider(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*fetch.RemoteFonts); !ok {
		t.Fatalf("provider = %T", p)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn", Format: "json"}.Logger(&buf).Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %s", buf.String())
	}
	LogConfig{Level: "warn", Format: "json"}.Logger(&buf).Warn("shown", "page", 1)
	if !strings.Contains(buf.String(), `"msg":"shown"`) || !strings.Contains(buf.String(), `"page":1`) {
		t.Fatalf("json output = %s", buf.String())
	}
}

func TestComposerOptions(t *testing.T) {
	cfg := Default()
	opts, err := cfg.ComposerOptions(nil)
	if err != nil || len(opts) != 4 {
		t.Fatalf("options = %d, %v", len(opts), err)
	}
	cfg.Fonts.CatalogURL = "https://backoffice.example.com/api/fonts"
	if opts, _ = cfg.ComposerOptions(nil); len(opts) != 5 {
		t.Fatalf("font provider option missing, got %d options", len(opts))
	}
	cfg.Fonts.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.ComposerOptions(nil); err == nil {
		t.Fatal("expected error for a missing font catalog")
	}
}
