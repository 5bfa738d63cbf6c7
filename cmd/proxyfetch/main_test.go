package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/Davis1233798/proxyrotator-go/pkg/rotator"
)

func newProxy(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v := r.Header.Get("X-Echo"); v != "" {
			w.Write([]byte(v))
			return
		}
		w.Write([]byte(body))
	}))
}

func TestRunModes(t *testing.T) {
	g := NewWithT(t)

	cases := []struct {
		mode, selector, body, want string
	}{
		{"text", "", "hello", "hello"},
		{"json", "", `{"a":[1,2]}`, "{\n  \"a\": [\n    1,\n    2\n  ]\n}\n"},
		{"html", "", "<html><head><title> Page </title></head></html>", "Page\n"},
		{"html", "li", "<ul><li>one</li><li> two </li></ul>", "one\ntwo\n"},
	}

	for _, c := range cases {
		srv := newProxy(c.body)
		r := rotator.New(rotator.WithProxies(srv.URL + "/"))

		var out bytes.Buffer
		err := run(context.Background(), r, c.mode, c.selector, "http://x.com", &rotator.Request{}, &out)
		srv.Close()

		g.Expect(err).NotTo(HaveOccurred(), c.mode)
		g.Expect(out.String()).To(Equal(c.want), c.mode)
	}
}

func TestRunSendsHeaders(t *testing.T) {
	g := NewWithT(t)

	srv := newProxy("")
	defer srv.Close()

	var headers headerFlags
	g.Expect(headers.Set("X-Echo: from header")).To(Succeed())
	g.Expect(headers.Set("no colon")).NotTo(Succeed())

	r := rotator.New(rotator.WithProxies(srv.URL + "/"))
	var out bytes.Buffer
	err := run(context.Background(), r, "text", "", "http://x.com", &rotator.Request{Header: headers.header()}, &out)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(out.String()).To(Equal("from header"))
}

func TestRunUnknownMode(t *testing.T) {
	g := NewWithT(t)

	r := rotator.New()
	err := run(context.Background(), r, "xml", "", "http://x.com", nil, &bytes.Buffer{})
	g.Expect(err).To(MatchError(ContainSubstring("unknown mode")))
}

func TestRunReportsExhaustion(t *testing.T) {
	g := NewWithT(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r := rotator.New(rotator.WithProxies(srv.URL+"/"), rotator.WithRetries(2))
	err := run(context.Background(), r, "text", "", "http://x.com", nil, &bytes.Buffer{})

	var exhausted *rotator.ExhaustedError
	g.Expect(errors.As(err, &exhausted)).To(BeTrue())
	g.Expect(exhausted.Attempts).To(Equal(2))
}
