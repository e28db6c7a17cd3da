package adminui

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxy_RewritesHTML(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/report/1/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, adminPage)
		case "/admin/data.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"p":"<p class=\"help\">x</p>"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	proxy := NewProxy(target, NewRewriter(RewriterConfig{TagSourceURL: "/admin/fieldnames/suggestions"}))
	front := httptest.NewServer(proxy)
	defer front.Close()

	t.Run("html page is rewritten", func(t *testing.T) {
		resp, err := http.Get(front.URL + "/admin/report/1/")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "help-tooltip")
		assert.Contains(t, string(body), `data-behavior="tagit"`)
		assert.NotContains(t, string(body), `<p class="help">`)
	})

	t.Run("json passes through", func(t *testing.T) {
		resp, err := http.Get(front.URL + "/admin/data.json")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"p":"<p class=\"help\">x</p>"}`, string(body))
	})

	t.Run("status passes through", func(t *testing.T) {
		resp, err := http.Get(front.URL + "/missing")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestProxy_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	upstream.Close()

	rec := httptest.NewRecorder()
	NewProxy(target, NewRewriter(RewriterConfig{})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestModifyResponse_SkipsCompressed(t *testing.T) {
	rw := NewRewriter(RewriterConfig{TagSourceURL: "/s"})
	resp := &http.Response{
		Header: http.Header{
			"Content-Type":     {"text/html"},
			"Content-Encoding": {"gzip"},
		},
		Body:    io.NopCloser(strings.NewReader("compressed")),
		Request: httptest.NewRequest(http.MethodGet, "/admin/", nil),
	}
	require.NoError(t, rw.ModifyResponse(resp))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "compressed", string(body))
}

func TestModifyResponse_UpdatesLength(t *testing.T) {
	rw := NewRewriter(RewriterConfig{})
	resp := &http.Response{
		Header:  http.Header{"Content-Type": {"text/html"}},
		Body:    io.NopCloser(strings.NewReader(`<div><p class="help">tip</p></div>`)),
		Request: httptest.NewRequest(http.MethodGet, "/admin/", nil),
	}
	require.NoError(t, rw.ModifyResponse(resp))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), resp.ContentLength)
	assert.Equal(t, strconv.Itoa(len(body)), resp.Header.Get("Content-Length"))
	assert.Contains(t, string(body), `title="tip"`)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML("text/html"))
	assert.True(t, isHTML("text/html; charset=utf-8"))
	assert.False(t, isHTML("application/json"))
	assert.False(t, isHTML(""))
}

func TestModifyResponse_LargePageStreamsThrough(t *testing.T) {
	page := bytes.Repeat([]byte("a"), maxRewriteBytes+1024)
	copy(page, `<div><p class="help">tip</p></div>`)

	rw := NewRewriter(RewriterConfig{TagSourceURL: "/s"})
	resp := &http.Response{
		Header:        http.Header{"Content-Type": {"text/html"}},
		Body:          io.NopCloser(bytes.NewReader(page)),
		ContentLength: -1,
		Request:       httptest.NewRequest(http.MethodGet, "/admin/", nil),
	}
	require.NoError(t, rw.ModifyResponse(resp))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, len(page), len(body))
	assert.True(t, bytes.Equal(page, body))
	assert.Equal(t, int64(-1), resp.ContentLength)
	assert.Empty(t, resp.Header.Get("Content-Length"))
}

func TestProxy_RewritesUpstreamRedirects(t *testing.T) {
	var upstreamURL string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/":
			http.Redirect(w, r, upstreamURL+"/admin/login/?next=/admin/", http.StatusFound)
		case "/admin/bare":
			http.Redirect(w, r, upstreamURL, http.StatusFound)
		case "/admin/away":
			http.Redirect(w, r, "https://sso.example.com/login", http.StatusFound)
		case "/admin/relative":
			w.Header().Set("Location", "/admin/survey/")
			w.WriteHeader(http.StatusFound)
		}
	}))
	defer upstream.Close()
	upstreamURL = upstream.URL

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	front := httptest.NewServer(NewProxy(target, NewRewriter(RewriterConfig{})))
	defer front.Close()

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	cases := map[string]string{
		"/admin/":         "/admin/login/?next=/admin/",
		"/admin/bare":     "/",
		"/admin/away":     "https://sso.example.com/login",
		"/admin/relative": "/admin/survey/",
	}
	for path, want := range cases {
		resp, err := client.Get(front.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, want, resp.Header.Get("Location"), path)
	}
}
