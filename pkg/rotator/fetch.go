package rotator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Request carries the caller's request options. The body is kept as bytes so
// every attempt can send it again.
type Request struct {
	Method string
	Header http.Header
	Body   []byte
}

func (r *Request) build(ctx context.Context, target string) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if r.Header != nil {
		req.Header = r.Header.Clone()
	}
	return req, nil
}

// Fetch requests target through the configured proxies and returns the first
// response with a 2xx status. In rotating mode a failed proxy is skipped and
// the list starts over once every proxy has been tried; with a fixed index
// every attempt goes through the same proxy. The caller must close the
// response body.
func (r *Rotator) Fetch(ctx context.Context, target string, req *Request) (*http.Response, error) {
	if len(r.proxies) == 0 || r.fixed && (r.fixedIndex < 0 || r.fixedIndex >= len(r.proxies)) {
		err := &ConfigError{Index: r.fixedIndex, Size: len(r.proxies)}
		r.observeFetch(0, err)
		return nil, err
	}
	if req == nil {
		req = &Request{}
	}

	log := r.log
	if r.debug {
		log = log.With().Str("fetch_id", uuid.NewString()).Str("target", target).Logger()
	}

	cursor := 0
	if r.fixed {
		cursor = r.fixedIndex
	}

	var (
		attempts int
		last     error
	)
	for attempts < r.retries {
		if err := ctx.Err(); err != nil {
			r.observeFetch(attempts, err)
			return nil, fmt.Errorf("fetch %s: %w", target, err)
		}

		proxy := r.proxies[cursor]
		log.Info().
			Int("attempt", attempts+1).
			Int("retries", r.retries).
			Str("proxy", proxy).
			Msg("trying proxy")

		startAt := time.Now()
		resp, err := r.attempt(ctx, proxy, BuildURL(proxy, target), req)
		r.observeAttempt(proxy, time.Since(startAt), err)

		if err == nil {
			log.Info().Str("proxy", proxy).Msg("proxy succeeded")
			r.observeFetch(attempts+1, nil)
			return resp, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn().Err(ctxErr).Str("proxy", proxy).Msg("fetch canceled")
			r.observeFetch(attempts, ctxErr)
			return nil, fmt.Errorf("fetch %s: %w", target, ctxErr)
		}

		log.Warn().Err(err).Str("proxy", proxy).Msg("attempt failed")
		last = err
		if !r.fixed {
			cursor = (cursor + 1) % len(r.proxies)
		}
		attempts++
	}

	err := &ExhaustedError{Attempts: attempts, Last: last}
	log.Error().Int("attempts", attempts).Msg("all attempts failed")
	r.observeFetch(attempts, err)
	return nil, err
}

// attempt sends one request and resolves the race between the response and
// the timeout timer. On success the attempt context lives until the body is
// closed.
func (r *Rotator) attempt(ctx context.Context, proxy, finalURL string, req *Request) (*http.Response, error) {
	actx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(r.timeout, func() { cancel(ErrAttemptTimeout) })

	httpReq, err := req.build(actx, finalURL)
	if err != nil {
		timer.Stop()
		cancel(nil)
		return nil, err
	}

	resp, err := r.client.Do(httpReq)
	if !timer.Stop() {
		if resp != nil {
			resp.Body.Close()
		}
		cancel(nil)
		return nil, fmt.Errorf("%w after %s", ErrAttemptTimeout, r.timeout)
	}
	if err != nil {
		cancel(nil)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel(nil)
		return nil, &StatusError{StatusCode: resp.StatusCode, Proxy: proxy}
	}

	resp.Body = &releaseBody{ReadCloser: resp.Body, release: func() { cancel(nil) }}
	return resp, nil
}

// releaseBody cancels the attempt context once the body is closed.
type releaseBody struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releaseBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)
	return err
}
