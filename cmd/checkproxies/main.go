package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Davis1233798/proxyrotator-go/internal/config"
	"github.com/Davis1233798/proxyrotator-go/internal/logger"
	"github.com/Davis1233798/proxyrotator-go/pkg/rotator"
)

type result struct {
	Proxy   string
	Latency time.Duration
	Err     error
}

func main() {
	target := flag.String("url", "https://httpbin.org/ip", "URL fetched through every proxy")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	opts := cfg.RotatorOptions(logger.WithComponent("checkproxies"))
	results := check(context.Background(), *target, opts)
	if report(os.Stdout, results) == 0 {
		os.Exit(1)
	}
}

// check pins a single-attempt rotator to each configured proxy in turn.
func check(ctx context.Context, target string, opts []rotator.Option) []result {
	proxies := rotator.New(opts...).Proxies()
	results := make([]result, 0, len(proxies))

	for i, proxy := range proxies {
		r := rotator.New(append(opts, rotator.WithProxyIndex(i), rotator.WithRetries(1))...)

		startAt := time.Now()
		_, err := r.GetText(ctx, target, nil)
		results = append(results, result{Proxy: proxy, Latency: time.Since(startAt), Err: err})
	}
	return results
}

func report(w io.Writer, results []result) int {
	working := 0
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(w, "[FAIL] %s (%v)\n", res.Proxy, res.Err)
			continue
		}
		working++
		fmt.Fprintf(w, "[OK] %s | Latency: %dms\n", res.Proxy, res.Latency.Milliseconds())
	}
	fmt.Fprintf(w, "Working proxies: %d/%d\n", working, len(results))
	return working
}
