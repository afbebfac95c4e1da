package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.MQTTTopic != "frigate/events/#" {
		t.Errorf("Unexpected default topic: %s", cfg.MQTTTopic)
	}
	if cfg.MQTTPort != 1883 {
		t.Errorf("Unexpected default port: %d", cfg.MQTTPort)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("Unexpected default threshold: %v", cfg.ConfidenceThreshold)
	}
	if cfg.Workers != 1 {
		t.Errorf("Unexpected default worker count: %d", cfg.Workers)
	}
	if cfg.PopTimeout != time.Second {
		t.Errorf("Unexpected default pop timeout: %v", cfg.PopTimeout)
	}
	if cfg.DedupeHistory != 0 {
		t.Errorf("Dedupe should be off by default, got %d", cfg.DedupeHistory)
	}
	if cfg.FullEvidence {
		t.Error("Full evidence should be off by default")
	}

	want := []string{"person", "car", "truck", "dog", "cat"}
	if len(cfg.TargetClasses) != len(want) {
		t.Fatalf("Unexpected default target classes: %v", cfg.TargetClasses)
	}
	for i, class := range want {
		if cfg.TargetClasses[i] != class {
			t.Errorf("Expected target class %s at %d, got %s", class, i, cfg.TargetClasses[i])
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MQTT_BROKER", "10.0.0.5")
	t.Setenv("MQTT_PORT", "8883")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.7")
	t.Setenv("TARGET_CLASSES", "person, bicycle")
	t.Setenv("WORKERS", "4")
	t.Setenv("POP_TIMEOUT", "250ms")
	t.Setenv("FULL_EVIDENCE", "true")

	cfg := Load()

	if cfg.MQTTBroker != "10.0.0.5" {
		t.Errorf("Expected broker override, got %s", cfg.MQTTBroker)
	}
	if cfg.MQTTPort != 8883 {
		t.Errorf("Expected port override, got %d", cfg.MQTTPort)
	}
	if cfg.ConfidenceThreshold != 0.7 {
		t.Errorf("Expected threshold override, got %v", cfg.ConfidenceThreshold)
	}
	if len(cfg.TargetClasses) != 2 || cfg.TargetClasses[1] != "bicycle" {
		t.Errorf("Expected trimmed class list, got %v", cfg.TargetClasses)
	}
	if cfg.Workers != 4 {
		t.Errorf("Expected worker override, got %d", cfg.Workers)
	}
	if cfg.PopTimeout != 250*time.Millisecond {
		t.Errorf("Expected pop timeout override, got %v", cfg.PopTimeout)
	}
	if !cfg.FullEvidence {
		t.Error("Expected full evidence enabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MQTT_PORT", "not-a-number")
	t.Setenv("CONFIDENCE_THRESHOLD", "high")
	t.Setenv("POP_TIMEOUT", "-3s")

	cfg := Load()

	if cfg.MQTTPort != 1883 {
		t.Errorf("Expected default port on bad input, got %d", cfg.MQTTPort)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("Expected default threshold on bad input, got %v", cfg.ConfidenceThreshold)
	}
	if cfg.PopTimeout != time.Second {
		t.Errorf("Expected default pop timeout on non-positive input, got %v", cfg.PopTimeout)
	}
}
