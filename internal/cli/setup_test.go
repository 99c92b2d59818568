package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/certify/config"
	"github.com/ByLCY/certify/idalloc"
	"github.com/ByLCY/certify/layout"
)

func TestStaffRegistryKey(t *testing.T) {
	cfg := config.Default()
	cfg.IDs.RedisKey = ""
	if got := staffRegistryKey(cfg); got != idalloc.DefaultRedisKey+":staff" {
		t.Fatalf("empty key should derive from the default set, got %q", got)
	}
	cfg.IDs.RedisKey = "acme:certs"
	if got := staffRegistryKey(cfg); got != "acme:certs:staff" {
		t.Fatalf("unexpected staff key %q", got)
	}
}

func TestNewCompositorWarnsWhenDegraded(t *testing.T) {
	cfg := config.Default()
	cfg.Font = "embed:goregular"
	tpl := layout.DefaultTemplate()

	var buf bytes.Buffer
	c := newCompositor(cfg, tpl, true, newLogger(&buf, log.InfoLevel))
	if c.Scalable() {
		t.Fatalf("--no-font should force the fallback face")
	}
	if !strings.Contains(buf.String(), "fallback face") {
		t.Fatalf("expected degraded warning, got %q", buf.String())
	}

	buf.Reset()
	c = newCompositor(cfg, tpl, false, newLogger(&buf, log.InfoLevel))
	if !c.Scalable() {
		t.Fatalf("embedded font should be resolved")
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected warning: %q", buf.String())
	}
}
