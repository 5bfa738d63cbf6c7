package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Davis1233798/proxyrotator-go/internal/config"
	"github.com/Davis1233798/proxyrotator-go/internal/logger"
	"github.com/Davis1233798/proxyrotator-go/internal/metrics"
	"github.com/Davis1233798/proxyrotator-go/pkg/rotator"
)

// headerFlags collects repeated -header "Key: Value" flags.
type headerFlags []string

func (h *headerFlags) String() string { return strings.Join(*h, ", ") }

func (h *headerFlags) Set(v string) error {
	if !strings.Contains(v, ":") {
		return fmt.Errorf("header %q must look like 'Key: Value'", v)
	}
	*h = append(*h, v)
	return nil
}

func (h headerFlags) header() http.Header {
	header := http.Header{}
	for _, kv := range h {
		k, v, _ := strings.Cut(kv, ":")
		header.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	return header
}

func main() {
	target := flag.String("url", "", "Target URL to fetch")
	mode := flag.String("mode", "text", "Output mode: text, json or html")
	selector := flag.String("selector", "", "CSS selector printed in html mode")
	method := flag.String("method", http.MethodGet, "HTTP method")
	body := flag.String("body", "", "Request body")
	var headers headerFlags
	flag.Var(&headers, "header", "Request header 'Key: Value' (repeatable)")

	flag.Parse()

	if *target == "" {
		fmt.Println("Usage: proxyfetch -url <url> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	log := logger.Init(cfg.LogLevel)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	if cfg.MetricsPort > 0 {
		srv := metrics.StartServer(cfg.MetricsPort, reg, log)
		defer srv.Close()
	}

	opts := append(cfg.RotatorOptions(logger.WithComponent("rotator")), rotator.WithObserver(collector))
	r := rotator.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := &rotator.Request{Method: *method, Header: headers.header()}
	if *body != "" {
		req.Body = []byte(*body)
	}

	log.Info().Str("url", *target).Int("proxies", len(r.Proxies())).Int("retries", r.Retries()).Msg("fetching")
	if err := run(ctx, r, *mode, *selector, *target, req, os.Stdout); err != nil {
		log.Error().Err(err).Str("url", *target).Msg("fetch failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, r *rotator.Rotator, mode, selector, target string, req *rotator.Request, w io.Writer) error {
	switch mode {
	case "text":
		text, err := r.GetText(ctx, target, req)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err

	case "json":
		var v any
		if err := r.GetJSON(ctx, target, &v, req); err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case "html":
		doc, err := r.GetDocument(ctx, target, req)
		if err != nil {
			return err
		}
		if selector == "" {
			_, err = fmt.Fprintln(w, strings.TrimSpace(doc.Find("title").Text()))
			return err
		}
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			_, err = fmt.Fprintln(w, strings.TrimSpace(s.Text()))
			return err == nil
		})
		return err

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}
