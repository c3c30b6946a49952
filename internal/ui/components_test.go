package ui_test

import (
	"strings"
	"testing"

	"fcstore/internal/ui"

	"github.com/stretchr/testify/require"
)

func TestBucketsPage(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, ui.BucketsPage([]string{"logs", "<script>"}).Render(t.Context(), &sb))

	out := sb.String()
	require.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"), "expected full HTML document")
	require.Contains(t, out, `<a href="/logs">logs</a>`)
	require.Contains(t, out, "&lt;script&gt;", "bucket names must be escaped")
	require.NotContains(t, out, "<script>")
}

func TestBucketsPageEmpty(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, ui.BucketsPage(nil).Render(t.Context(), &sb))
	require.Contains(t, sb.String(), "No buckets found.")
}

func TestBucketPage(t *testing.T) {
	t.Parallel()

	items := []ui.Item{
		{Name: "report 1.txt", LastModified: "2024-05-01T12:00:00Z"},
	}

	var sb strings.Builder
	require.NoError(t, ui.BucketPage("logs", items).Render(t.Context(), &sb))

	out := sb.String()
	require.Contains(t, out, "<h1>Bucket: logs</h1>")
	require.Contains(t, out, `href="/logs/report%201.txt?raw=1"`)
	require.Contains(t, out, "2024-05-01T12:00:00Z")
}

func TestBucketPageEmpty(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, ui.BucketPage("logs", nil).Render(t.Context(), &sb))
	require.Contains(t, sb.String(), "No items in this bucket.")
}
