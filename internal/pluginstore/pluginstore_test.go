package pluginstore

import (
	"path/filepath"
	"testing"
)

func TestStore_SaveListDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.Save("echo", false, []string{"ws://a:8081", "ws://b:8081"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("muted", true, []string{"ws://c"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	plugins, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(plugins) != 2 {
		t.Fatalf("List returned %d plugins, want 2", len(plugins))
	}

	byName := map[string]Plugin{}
	for _, p := range plugins {
		byName[p.Name] = p
	}
	if echo, ok := byName["echo"]; !ok || echo.Disabled || len(echo.URLs) != 2 {
		t.Errorf("echo plugin round-tripped wrong: %+v", byName["echo"])
	}
	if muted, ok := byName["muted"]; !ok || !muted.Disabled {
		t.Errorf("muted plugin round-tripped wrong: %+v", byName["muted"])
	}

	if err := s.Delete("muted"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	plugins, err = s.List()
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if len(plugins) != 1 || plugins[0].Name != "echo" {
		t.Fatalf("List after delete = %+v, want only echo", plugins)
	}
}

func TestStore_DeleteMissingIsNotError(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Delete("never-existed"); err != nil {
		t.Errorf("Delete of a missing plugin returned an error: %v", err)
	}
}

func TestStore_LoadSkipsDisabledAndShufflesURLs(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	urls := []string{"ws://a", "ws://b", "ws://c", "ws://d", "ws://e"}
	if err := s.Save("live", false, urls); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("off", true, []string{"ws://f"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	specs, err := s.Load("123456789")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(specs) != 1 || specs[0].Name != "live" {
		t.Fatalf("Load = %+v, want exactly the enabled \"live\" plugin", specs)
	}
	if len(specs[0].URLs) != len(urls) {
		t.Fatalf("Load returned %d urls, want %d", len(specs[0].URLs), len(urls))
	}
	seen := map[string]bool{}
	for _, u := range specs[0].URLs {
		seen[u] = true
	}
	for _, u := range urls {
		if !seen[u] {
			t.Errorf("Load dropped url %q", u)
		}
	}
}

func TestStore_OpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "plugins")
	if _, err := Open(dir); err != nil {
		t.Fatalf("Open on a non-existent nested dir: %v", err)
	}
}
