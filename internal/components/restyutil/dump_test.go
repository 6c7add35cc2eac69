package restyutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("<p>not here</p>"))
	}))
	defer server.Close()

	output := NewMemoryOutput()
	client := resty.New()
	client.SetHeader("user-agent", "uwcatalog-test")
	Dump(client, output)

	_, err := client.R().Get(server.URL + "/students/crscat/missing.html")
	require.NoError(t, err)

	messages := output.Messages()
	require.Len(t, messages, 1)
	message := messages["1"]
	require.Contains(t, message, "GET "+server.URL+"/students/crscat/missing.html")
	require.Contains(t, message, "User-Agent: uwcatalog-test")
	require.Contains(t, message, "404")
	require.Contains(t, message, "<p>not here</p>")
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.txt"), []byte("stale"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("1", "contents")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(contents))
}
