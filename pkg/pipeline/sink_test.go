package pipeline

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSink_AppendWritesOneJSONLine(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(filepath.Join(dir, "raw"))

	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	sink.Append(SessionRecord{
		SessionID: "s1",
		Timestamp: now,
		Query:     "use context7 assess lithium battery market",
		Verdict:   "Analysis passes automated checks",
	})

	path := filepath.Join(dir, "raw", "2026-07-30.jsonl")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())

	var rec SessionRecord
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
	require.Equal(t, "s1", rec.SessionID)
	require.False(t, scanner.Scan())
}

func TestSink_AppendCreatesMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(filepath.Join(dir, "nested", "raw"))

	sink.Append(SessionRecord{SessionID: "s2", Timestamp: time.Now()})

	entries, err := os.ReadDir(filepath.Join(dir, "nested", "raw"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
