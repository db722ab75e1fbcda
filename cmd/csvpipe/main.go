// Command csvpipe streams a CSV file of arbitrary size from a file or stdin
// to a file, stdout, or a SQLite table, optionally projecting a subset of
// columns by position, with memory bounded by the I/O buffer size.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"csvpipe/internal/config"
	"csvpipe/internal/metrics"
	"csvpipe/internal/metrics/datadog"
	"csvpipe/internal/metrics/prompush"
	"csvpipe/internal/pipeline"
)

// main is the entry point for the csvpipe binary. It builds the run
// configuration from flags, optionally initializes a metrics backend, and
// executes the streaming run. Exit code is 0 on success and 1 on any fatal
// error; per-row parse errors never affect the exit code.
func main() {
	var (
		output            string
		fieldsFlg         string
		bufferSize        int
		threads           int
		verbose           bool
		showStats         bool
		checksum          bool
		sqlitePath        string
		sqliteTable       string
		metricsBackendFlg string
		pushGatewayURLFlg string
		statsdAddrFlg     string
	)

	flag.StringVar(&output, "o", "", "output file (default: stdout)")
	flag.StringVar(&fieldsFlg, "f", "", "fields to select, comma-separated 1-based indices (e.g. 1,3)")
	flag.IntVar(&bufferSize, "buffer-size", config.DefaultBufferSize, "I/O buffer size in bytes")
	flag.IntVar(&threads, "t", 0, "worker thread count (accepted; record processing is single-stream)")
	flag.BoolVar(&verbose, "v", false, "enable verbose logs")
	flag.BoolVar(&showStats, "stats", false, "print processing statistics to stderr")
	flag.BoolVar(&checksum, "checksum", false, "compute an xxh3 checksum of the input while streaming")
	flag.StringVar(&sqlitePath, "sqlite", "", "load records into this SQLite database instead of a text sink")
	flag.StringVar(&sqliteTable, "table", "", "destination table name for -sqlite")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&statsdAddrFlg, "statsd-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() > 1 {
		fatalf("at most one input file may be given, got %d", flag.NArg())
	}

	cfg := config.Config{
		Input:       flag.Arg(0),
		Output:      output,
		BufferSize:  bufferSize,
		Threads:     threads,
		Verbose:     verbose,
		Stats:       showStats,
		Checksum:    checksum,
		SQLitePath:  sqlitePath,
		SQLiteTable: sqliteTable,
	}
	if fieldsFlg != "" {
		fields, err := config.ParseFields(fieldsFlg)
		if err != nil {
			fatalf("invalid -f: %v", err)
		}
		cfg.Fields = fields
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasError(issues) {
		os.Exit(1)
	}

	initMetrics(metricsBackendFlg, pushGatewayURLFlg, statsdAddrFlg, verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	if err := pipeline.New(cfg).Run(context.Background()); err != nil {
		fatalf("%v", err)
	}
}

// initMetrics decides the metrics backend: flag → env → nop default. A
// backend that fails to initialize degrades to nop with a log line rather
// than aborting the run.
func initMetrics(backendName, gatewayURL, statsdAddr string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gatewayURL == "" {
			gatewayURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("csvpipe", gatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=pushgateway url=%s", gatewayURL)
		}
		metrics.SetBackend(b)

	case "datadog":
		if statsdAddr == "" {
			statsdAddr = os.Getenv("DD_AGENT_ADDR")
		}
		if statsdAddr == "" {
			statsdAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: statsdAddr, Namespace: "csvpipe."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		if verbose {
			log.Printf("metrics: backend=datadog addr=%s", statsdAddr)
		}
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: csvpipe [flags] [input.csv]\n\n")
	fmt.Fprintf(os.Stderr, "Streams CSV from a file (or stdin) to a file, stdout, or a SQLite table,\n")
	fmt.Fprintf(os.Stderr, "optionally projecting columns by 1-based position. Memory stays bounded\n")
	fmt.Fprintf(os.Stderr, "regardless of input size.\n\nFlags:\n")
	flag.PrintDefaults()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
