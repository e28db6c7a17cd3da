package adminui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/crowdsourcing/surveyadmin/internal/logging"
)

const maxRewriteBytes = 8 << 20

// NewProxy forwards requests to the upstream admin site and rewrites its HTML pages
func NewProxy(upstream *url.URL, rw *Rewriter) *httputil.ReverseProxy {
	p := httputil.NewSingleHostReverseProxy(upstream)

	director := p.Director
	p.Director = func(r *http.Request) {
		director(r)
		r.Host = upstream.Host
		// let the transport negotiate and decode compression so bodies can be rewritten
		r.Header.Del("Accept-Encoding")
	}
	p.ModifyResponse = func(resp *http.Response) error {
		rewriteLocation(resp, upstream)
		return rw.ModifyResponse(resp)
	}
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.NewLogger(r.Context()).LogError("admin_proxy", err)
		w.WriteHeader(http.StatusBadGateway)
	}
	return p
}

// ModifyResponse rewrites uncompressed HTML responses in place. Anything else,
// or a page that fails to rewrite, passes through untouched.
func (rw *Rewriter) ModifyResponse(resp *http.Response) error {
	if !isHTML(resp.Header.Get("Content-Type")) || resp.Header.Get("Content-Encoding") != "" {
		return nil
	}
	if resp.ContentLength > maxRewriteBytes {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRewriteBytes+1))
	if err != nil {
		resp.Body.Close()
		return fmt.Errorf("read upstream body: %w", err)
	}
	if len(body) > maxRewriteBytes {
		// replay the prefix, then stream the rest of the page as is
		resp.Body = readCloser{
			Reader: io.MultiReader(bytes.NewReader(body), resp.Body),
			Closer: resp.Body,
		}
		return nil
	}
	resp.Body.Close()

	out := body
	rewritten, res, err := rw.Rewrite(bytes.NewReader(body))
	if err != nil {
		logRewriteFailure(resp.Request, err)
	} else if res.Changed() {
		out = rewritten
	}

	resp.Body = io.NopCloser(bytes.NewReader(out))
	resp.ContentLength = int64(len(out))
	resp.Header.Set("Content-Length", strconv.Itoa(len(out)))
	return nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// rewriteLocation makes redirects that name the upstream host relative, so the
// browser stays on the proxy.
func rewriteLocation(resp *http.Response, upstream *url.URL) {
	loc := resp.Header.Get("Location")
	if loc == "" {
		return
	}
	u, err := url.Parse(loc)
	if err != nil || u.Host == "" || !strings.EqualFold(u.Host, upstream.Host) {
		return
	}

	u.Scheme, u.Host, u.User = "", "", nil
	if u.Path == "" {
		u.Path = "/"
	}
	resp.Header.Set("Location", u.String())
}

func logRewriteFailure(req *http.Request, err error) {
	if req == nil {
		logging.NewLogger(context.Background()).LogWarnf("admin_rewrite", "rewrite: %v", err)
		return
	}
	logging.NewLogger(req.Context()).LogWarnf("admin_rewrite", "rewrite %s: %v", req.URL.Path, err)
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/html"
}
