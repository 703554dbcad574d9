package config

import "testing"

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("narrow")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Mixer.Roll.Min != 1000 || cfg.Mixer.Roll.Max != 2000 {
		t.Errorf("expected 1000..2000 roll range, got %+v", cfg.Mixer.Roll)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestHoverNeutralPreset(t *testing.T) {
	cfg := GetPreset("hover-neutral")
	if cfg.Mixer.Throttle.Idle != 1500 {
		t.Errorf("throttle idle = %v, want 1500", cfg.Mixer.Throttle.Idle)
	}
}

func TestPresetsAreValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("ListPresets() returned %d names", len(names))
	}
	for i, name := range names {
		if i > 0 && names[i-1] > name {
			t.Errorf("presets not sorted: %v", names)
		}
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
