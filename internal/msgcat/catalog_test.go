package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderEmbeddedDefaults(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("start.welcome", map[string]any{"Name": "Ali"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "Ali") || !strings.Contains(got, "/newgame") {
		t.Fatalf("unexpected welcome text: %q", got)
	}
}

func TestRenderMoveCaption(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := c.Render("move.caption", map[string]any{"Player": "e2e4", "Engine": "e7e5"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "e2e4") || !strings.Contains(got, "e7e5") {
		t.Fatalf("caption missing moves: %q", got)
	}

	got, err = c.Render("move.caption", map[string]any{"Player": "e2e4", "Engine": ""})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(got, "Siyah") {
		t.Fatalf("caption should omit engine line: %q", got)
	}
}

func TestRenderMissingKey(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatal("expected error for missing key")
	}
	if got := c.MustRender("no.such.key", nil); got != "no.such.key" {
		t.Fatalf("MustRender fallback = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "text:\n  help_hint: \"override edildi\"\n"
	if err := os.WriteFile(filepath.Join(dir, "10-custom.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("text.help_hint", nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "override edildi" {
		t.Fatalf("override not applied: %q", got)
	}
	// untouched keys keep their embedded defaults
	if got := c.MustRender("text.chess_hint", nil); !strings.Contains(got, "/newgame") {
		t.Fatalf("default lost after override: %q", got)
	}
}
