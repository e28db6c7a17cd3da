package main

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFetchCommand(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"objects":[{"slug":"census","title":"Census","questions":[
			{"fieldname":"age","question":"Age?"},
			{"fieldname":"city","question":"City?"}]}]}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, "fetch", "--base-url", srv.URL, "--api-key", "secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)

	var items []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	assert.Equal(t, []map[string]string{
		{"label": "Census - Age?", "value": "census.age"},
		{"label": "Census - City?", "value": "census.city"},
	}, items)
}

func TestFetchCommand_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := runCmd(t, "fetch", "--base-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFetchCommand_RequiresBaseURL(t *testing.T) {
	t.Setenv("SURVEY_API_BASE_URL", "")
	_, err := runCmd(t, "fetch")
	assert.EqualError(t, err, "--base-url is required")
}

func TestLoopback(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", loopback(&net.TCPAddr{IP: net.IPv6zero, Port: 8080}))
}
