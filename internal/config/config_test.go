package config

import (
	"testing"

	"github.com/oalang/apic/internal/errors"
)

func TestParseValidConfig(t *testing.T) {
	src := []byte(`
[api]
main = "main.oal"
target = "openapi3"
base = "./specs"
`)
	cfg, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.API.Main != "main.oal" {
		t.Errorf("Main = %q, want main.oal", cfg.API.Main)
	}
	if cfg.API.Target != "openapi3" {
		t.Errorf("Target = %q, want openapi3", cfg.API.Target)
	}
	if cfg.API.Base != "./specs" {
		t.Errorf("Base = %q, want ./specs", cfg.API.Base)
	}
}

func TestParseMissingMain(t *testing.T) {
	_, err := Parse([]byte(`[api]
target = "openapi3"
`))
	if err == nil {
		t.Fatal("expected an error for a missing main field")
	}
	if kind, ok := errors.KindOf(err); !ok || kind != errors.EmptyPath {
		t.Errorf("expected EmptyPath, got %v (ok=%v)", kind, ok)
	}
}

func TestParseMalformedToml(t *testing.T) {
	_, err := Parse([]byte("this is not [ valid toml"))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if kind, ok := errors.KindOf(err); !ok || kind != errors.ParseFailed {
		t.Errorf("expected ParseFailed, got %v (ok=%v)", kind, ok)
	}
}
