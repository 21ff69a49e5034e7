package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts the package-level flag state back to its defaults; cobra
// keeps it between executions of rootCmd.
func resetFlags() {
	clientEndpoint = ""
	clientOutputFormat = "table"
	configInitForce = false
	configShowPath = ""
	if f := rootCmd.Flags().Lookup("version"); f != nil {
		_ = f.Value.Set("false")
	}
}

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRunStartPostsCommand(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Script execution started."}`))
	}))
	defer srv.Close()

	out, err := executeRoot(t, "run", "start", "--endpoint", srv.URL, "python3 src/replay.py chat.json --speedup 4")
	require.NoError(t, err)
	assert.Contains(t, out, "Script execution started.")
	assert.Equal(t, map[string]string{
		"action":  "start",
		"command": "python3 src/replay.py chat.json --speedup 4",
	}, got)
}

func TestRunStartJoinsArguments(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Script execution started."}`))
	}))
	defer srv.Close()

	_, err := executeRoot(t, "run", "start", "--endpoint", srv.URL+"/", "--", "python3", "main.py", "verenetti", "--start")
	require.NoError(t, err)
	assert.Equal(t, "python3 main.py verenetti --start", got["command"])
}

func TestRunStopReportsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"stop failed: llm-bot: operation not permitted"}`))
	}))
	defer srv.Close()

	out, err := executeRoot(t, "run", "stop", "--endpoint", srv.URL, "main.py")
	require.Error(t, err)
	assert.Contains(t, out, "operation not permitted")
}

func TestRunOutputRejectsUnknownKind(t *testing.T) {
	_, err := executeRoot(t, "run", "output", "--endpoint", "http://127.0.0.1:1", "spammer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spammer")
}

func TestStatusCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/runScript/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"kind":"hater-bot","script":"hate_speech_generator.py","state":"Running","pid":77,"command":"python3 hate_speech_generator.py","logFile":"x"}]`))
	}))
	defer srv.Close()

	out, err := executeRoot(t, "status", "--endpoint", srv.URL, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "hater-bot"`)
	assert.Contains(t, out, `"pid": 77`)
}
