package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Event types understood by the animation core. Any other type
// (e.g. "action") is carried through as an inert annotation.
const (
	TypeBackground = "background"
	TypeSpeak      = "speak"
)

// Event is one entry of the ordered script produced by the
// screenplay breakdown service.
type Event struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Character   string `json:"character,omitempty"`
	Text        string `json:"text,omitempty"`
	AudioFile   string `json:"audio_file,omitempty"`
}

// ErrScriptNotFound reports a missing input script file.
var ErrScriptNotFound = errors.New("файл сценария не найден")

// Read loads the ordered event list from a JSON script file.
func Read(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, path)
		}
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("некорректный JSON сценария %s: %w", path, err)
	}

	return events, nil
}

// Write saves the event list back to disk (used by tooling that
// fills in audio_file references after recording).
func Write(events []Event, path string) error {
	data, err := json.MarshalIndent(events, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
