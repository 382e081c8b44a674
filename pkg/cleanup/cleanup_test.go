package cleanup

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLogger_LogCompletionWritesSessionAndAuditLines(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(dir)

	err := logger.LogCompletion(CompletionInput{
		SessionID: "s1",
		Query:     "use context7 query with api_key: abcdef1234567890",
		Summary:   "Analysis passes automated checks",
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	monthDir := filepath.Join(dir, now.Format("2006"), now.Format("01"))

	sessionLines := readLines(t, filepath.Join(monthDir, "session.jsonl"))
	require.Len(t, sessionLines, 1)

	auditLines := readLines(t, filepath.Join(monthDir, "audit.jsonl"))
	require.Len(t, auditLines, 1)
}

func TestLogger_LogCompletionNoAuditWhenNothingRedacted(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger(dir)

	err := logger.LogCompletion(CompletionInput{SessionID: "s2", Summary: "clean summary"})
	require.NoError(t, err)

	now := time.Now().UTC()
	monthDir := filepath.Join(dir, now.Format("2006"), now.Format("01"))
	_, statErr := os.Stat(filepath.Join(monthDir, "audit.jsonl"))
	require.True(t, os.IsNotExist(statErr))
}

func TestService_ZeroRetentionDisablesPruning(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.jsonl")
	require.NoError(t, os.WriteFile(old, []byte("{}"), 0o644))
	require.NoError(t, os.Chtimes(old, time.Now().Add(-1000*24*time.Hour), time.Now().Add(-1000*24*time.Hour)))

	svc := NewService(dir, 0, time.Hour)
	svc.prune()

	_, err := os.Stat(old)
	require.NoError(t, err)
}

func TestService_PrunesFilesOlderThanRetention(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.jsonl")
	require.NoError(t, os.WriteFile(old, []byte("{}"), 0o644))
	require.NoError(t, os.Chtimes(old, time.Now().Add(-100*24*time.Hour), time.Now().Add(-100*24*time.Hour)))

	svc := NewService(dir, 90, time.Hour)
	svc.prune()

	_, err := os.Stat(old)
	require.True(t, os.IsNotExist(err))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
