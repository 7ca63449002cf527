package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadScript(t *testing.T) {
	raw := `[
        {"type": "background", "description": "A sunny park"},
        {"type": "speak", "character": "Steve", "text": "Hello!", "audio_file": "line_1_Steve.wav"},
        {"type": "action", "description": "Steve jumps"},
        {"type": "speak", "character": "bob", "text": "Hi."}
    ]`

	path := filepath.Join(t.TempDir(), "script_ready.json")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	events, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}

	if events[0].Type != TypeBackground || events[0].Description != "A sunny park" {
		t.Errorf("Event 0 = %+v", events[0])
	}
	if events[1].Type != TypeSpeak || events[1].AudioFile != "line_1_Steve.wav" {
		t.Errorf("Event 1 = %+v", events[1])
	}
	if events[2].Type != "action" {
		t.Errorf("Unknown types must survive parsing: %+v", events[2])
	}
	if events[3].AudioFile != "" {
		t.Errorf("Absent audio_file must stay empty: %+v", events[3])
	}
}

func TestReadMissingScript(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrScriptNotFound) {
		t.Errorf("Expected ErrScriptNotFound, got %v", err)
	}
}

func TestReadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(path); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestWriteRead(t *testing.T) {
	events := []Event{
		{Type: TypeBackground, Description: "desert"},
		{Type: TypeSpeak, Character: "Steve", Text: "hi", AudioFile: "a.wav"},
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := Write(events, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("Event count mismatch: expected %d, got %d", len(events), len(got))
	}
	if got[1].Character != "Steve" {
		t.Errorf("Character mismatch: %+v", got[1])
	}
}
