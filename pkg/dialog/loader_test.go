package dialog

import (
	"os"
	"path/filepath"
	"testing"
)

const overrideGiftYAML = `
name: gift
version: "2.0"
description: "Overridden gift flow"
mode: collecting_gift
keywords: ["gift", "present"]
hint: 'say "add a gift"'
effect: create_gift
steps:
  - key: recipient
    prompt: "Who's the lucky one?"
  - key: event_date
    prompt: "When do they need it?"
  - key: confirm
    terminal: true
    prompt: 'Schedule a gift for {{field .Draft "recipient"}}? (yes/no)'
`

const plantYAML = `
name: plant
mode: collecting_person
keywords: ["plant"]
hint: 'say "add a plant"'
effect: create_person
steps:
  - key: species
    prompt: "What kind of plant?"
  - key: confirm
    terminal: true
    prompt: "Save it? (yes/no)"
`

func TestLoaderOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gift.yaml"), []byte(overrideGiftYAML), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	loader, err := NewLoader(dir, BuiltinFlows()...)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := loader.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	gift, ok := loader.Get(FlowGift)
	if !ok {
		t.Fatal("gift flow not found")
	}
	if gift.Version != "2.0" {
		t.Errorf("gift version = %q, want override %q", gift.Version, "2.0")
	}
	if len(gift.Steps) != 3 {
		t.Errorf("gift steps = %d, want 3", len(gift.Steps))
	}

	// Untouched defaults stay available.
	if _, ok := loader.Get(FlowPerson); !ok {
		t.Error("person default lost after override load")
	}

	// Override keeps the default's priority slot.
	all := loader.All()
	if len(all) != 2 || all[0].Name != FlowGift {
		t.Errorf("flow order = %v, want gift first", flowNames(all))
	}
}

func TestLoaderAddsNewFlows(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "plant.yaml"), []byte(plantYAML), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	loader, err := NewLoader(dir, BuiltinFlows()...)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := loader.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	if _, ok := loader.Get("plant"); !ok {
		t.Error("new flow not loaded")
	}

	// New flows rank after the defaults for intent matching.
	all := loader.All()
	if len(all) != 3 || all[2].Name != "plant" {
		t.Errorf("flow order = %v, want plant last", flowNames(all))
	}
}

func TestLoaderMissingDirKeepsDefaults(t *testing.T) {
	loader, err := NewLoader(filepath.Join(t.TempDir(), "nope"), BuiltinFlows()...)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := loader.LoadAll(); err != nil {
		t.Fatalf("LoadAll on missing dir: %v", err)
	}
	if len(loader.All()) != 2 {
		t.Errorf("flows = %d, want the 2 defaults", len(loader.All()))
	}
}

func TestLoaderRejectsInvalidFlow(t *testing.T) {
	dir := t.TempDir()
	bad := "name: broken\nmode: collecting_gift\n" // no keywords, steps, effect
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(bad), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	loader, err := NewLoader(dir, BuiltinFlows()...)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	if _, err := loader.LoadAll(); err == nil {
		t.Error("expected load error for invalid flow")
	}

	// Failed reload leaves the previous registry in place.
	if len(loader.All()) != 2 {
		t.Errorf("flows = %d after failed load, want the 2 defaults", len(loader.All()))
	}
}

func flowNames(flows []*Flow) []string {
	names := make([]string, len(flows))
	for i, f := range flows {
		names[i] = f.Name
	}
	return names
}
