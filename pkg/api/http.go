package api

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/http/httpguts"

	"github.com/morezero/framehost/pkg/dispatcher"
)

const httpLogPrefix = "api:http"

const (
	// HTTPTimeout bounds a whole http.* request including the body read.
	HTTPTimeout = 30 * time.Second
	// MaxResponseBytes caps the decoded response body.
	MaxResponseBytes = 32 * 1024 * 1024
)

// ErrInvalidHeader is returned for header names or values that are not
// valid on the wire.
var ErrInvalidHeader = errors.New("invalid header")

// HTTPTransport is the round tripper used by http.*. Tests can override it.
var HTTPTransport http.RoundTripper = http.DefaultTransport

// RequestOptions is the http.request argument.
type RequestOptions struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
	Proxy   string            `json:"proxy"`
}

// HTTPResponse is the result of every http.* method. Header names are
// lower-cased and repeated values joined with ", ".
type HTTPResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

func registerHTTP(d *dispatcher.Dispatcher) {
	d.RegisterPooled("http.request", httpRequest)
	d.RegisterPooled("http.get", httpGet)
	d.RegisterPooled("http.post", httpPost)
}

func httpRequest(c *dispatcher.Call) (any, error) {
	var opts RequestOptions
	if err := c.Args().Single(&opts); err != nil {
		return nil, err
	}
	return Do(opts)
}

func httpGet(c *dispatcher.Call) (any, error) {
	opts := RequestOptions{Method: http.MethodGet}
	if err := c.Args().At(0, &opts.URL); err != nil {
		return nil, err
	}
	if _, err := c.Args().Optional(1, &opts.Headers); err != nil {
		return nil, err
	}
	return Do(opts)
}

func httpPost(c *dispatcher.Call) (any, error) {
	opts := RequestOptions{Method: http.MethodPost}
	if err := c.Args().At(0, &opts.URL); err != nil {
		return nil, err
	}
	if _, err := c.Args().Optional(1, &opts.Body); err != nil {
		return nil, err
	}
	if _, err := c.Args().Optional(2, &opts.Headers); err != nil {
		return nil, err
	}
	return Do(opts)
}

// Do performs one request. Compressed bodies (br, gzip) are decoded.
func Do(opts RequestOptions) (HTTPResponse, error) {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequest(method, opts.URL, strings.NewReader(opts.Body))
	if err != nil {
		return HTTPResponse{}, fmt.Errorf("%s - new request: %w", httpLogPrefix, err)
	}
	for k, v := range opts.Headers {
		if !httpguts.ValidHeaderFieldName(k) || !httpguts.ValidHeaderFieldValue(v) {
			return HTTPResponse{}, fmt.Errorf("%s - %q: %w", httpLogPrefix, k, ErrInvalidHeader)
		}
		req.Header.Set(k, v)
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "br, gzip")
	}

	transport := HTTPTransport
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return HTTPResponse{}, fmt.Errorf("%s - proxy url: %w", httpLogPrefix, err)
		}
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	client := &http.Client{Timeout: HTTPTimeout, Transport: transport}

	resp, err := client.Do(req)
	if err != nil {
		return HTTPResponse{}, fmt.Errorf("%s - %s %s: %w", httpLogPrefix, method, opts.URL, err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return HTTPResponse{}, err
	}
	headers := make(map[string]string, len(resp.Header))
	for k, vals := range resp.Header {
		headers[strings.ToLower(k)] = strings.Join(vals, ", ")
	}
	return HTTPResponse{Status: resp.StatusCode, Headers: headers, Body: string(body)}, nil
}

func decodeBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s - read body: %w", httpLogPrefix, err)
	}
	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		r = brotli.NewReader(bytes.NewReader(raw))
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("%s - gzip: %w", httpLogPrefix, err)
		}
		defer zr.Close()
		r = zr
	default:
		if len(raw) > MaxResponseBytes {
			raw = raw[:MaxResponseBytes]
		}
		return raw, nil
	}
	out, err := io.ReadAll(io.LimitReader(r, MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s - decode %s: %w", httpLogPrefix, resp.Header.Get("Content-Encoding"), err)
	}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	return out, nil
}
