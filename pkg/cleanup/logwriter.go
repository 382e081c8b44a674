package cleanup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func appendJSONLine(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory for %q: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %q: %w", path, err)
	}
	defer f.Close()

	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal log record: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append log entry to %q: %w", path, err)
	}
	return nil
}
