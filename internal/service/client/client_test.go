package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osadchiy/routerdesk/internal/api/http/responses"
)

// newConsoleStub serves canned console responses for client tests.
func newConsoleStub(t *testing.T, busy bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	// handle registers with an explicit method check; method patterns in
	// ServeMux need Go 1.22+.
	handle := func(method, pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				http.NotFound(w, r)

				return
			}

			h(w, r)
		})
	}

	handle(http.MethodGet, "/api/v1/status", func(w http.ResponseWriter, _ *http.Request) {
		status := "idle"
		if busy {
			status = "busy"
		}

		_ = json.NewEncoder(w).Encode(&responses.StatusResponse{Status: status, Version: "1.2.3"})
	})

	handle(http.MethodPost, "/api/v1/actions", func(w http.ResponseWriter, r *http.Request) {
		if busy {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(&responses.ErrorResponse{Error: "another operation is in progress"})

			return
		}

		var req responses.TriggerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "tester", r.Header.Get("X-Routerdesk-User"))

		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(&responses.TriggerResponse{Status: "accepted", RunID: "run-7"})
	})

	handle(http.MethodGet, "/api/v1/terminal", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(&responses.TerminalResponse{Port: 7681, Running: true})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestClientTrigger(t *testing.T) {
	t.Parallel()

	stub := newConsoleStub(t, false)

	api, err := New(stub.URL, WithUsername("tester"))
	require.NoError(t, err)

	trigger, err := api.Trigger(context.Background(), "packages-update", nil)
	require.NoError(t, err)
	require.Equal(t, "run-7", trigger.RunID)
}

func TestClientTriggerBusy(t *testing.T) {
	t.Parallel()

	stub := newConsoleStub(t, true)

	api, err := New(stub.URL, WithUsername("tester"))
	require.NoError(t, err)

	_, err = api.Trigger(context.Background(), "reboot", nil)
	require.ErrorIs(t, err, ErrBusy)
	require.Contains(t, err.Error(), "another operation is in progress")
}

func TestClientStatus(t *testing.T) {
	t.Parallel()

	stub := newConsoleStub(t, false)

	api, err := New(stub.URL)
	require.NoError(t, err)

	status, err := api.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, "idle", status.Status)
	require.Equal(t, "1.2.3", status.Version)
}

func TestClientTerminalURL(t *testing.T) {
	t.Parallel()

	stub := newConsoleStub(t, false)

	api, err := New(stub.URL)
	require.NoError(t, err)

	terminal, err := api.Terminal(context.Background())
	require.NoError(t, err)

	terminalURL, err := api.TerminalURL(terminal)
	require.NoError(t, err)
	require.Contains(t, terminalURL, ":7681/")
}

func TestClientAddressNormalization(t *testing.T) {
	t.Parallel()

	api, err := New("192.168.1.1:8036")
	require.NoError(t, err)
	require.Equal(t, "http://192.168.1.1:8036", api.baseURL)

	_, err = New("")
	require.ErrorIs(t, err, errAddressRequired)
}
