// chainsocket runs the entry agent of an application manifest as an
// interactive chat on the terminal. Type "end" to quit.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/sweetpotato0/chainsocket/config"
	"github.com/sweetpotato0/chainsocket/contrib/tokenizer/tiktoken"
	"github.com/sweetpotato0/chainsocket/memory/store"
	"github.com/sweetpotato0/chainsocket/middleware"
	"github.com/sweetpotato0/chainsocket/middleware/limiter"
	"github.com/sweetpotato0/chainsocket/middleware/logger"
	"github.com/sweetpotato0/chainsocket/middleware/metrics"
	"github.com/sweetpotato0/chainsocket/pkg/logging"
	"github.com/sweetpotato0/chainsocket/pkg/telemetry"
	"github.com/sweetpotato0/chainsocket/runtime"
)

// exitWord ends the chat.
const exitWord = "end"

type options struct {
	appPath      string
	secretsPath  string
	session      string
	memory       string
	metricsAddr  string
	trace        bool
	otlpEndpoint string
	tokenizer    string
	rps          float64
	burst        int
	logLevel     string
	logFormat    string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flagSet := pflag.NewFlagSet("chainsocket", pflag.ContinueOnError)
	flagSet.StringVar(&opts.appPath, "app", "app.yaml", "path to the application manifest")
	flagSet.StringVar(&opts.secretsPath, "secrets", "", "path to a YAML secrets file (environment variables are used otherwise)")
	flagSet.StringVar(&opts.session, "session", "", "conversation session id (default: a fresh UUID)")
	flagSet.StringVar(&opts.memory, "memory", store.BackendMemory, "conversation memory backend: memory, sqlite, redis, postgres or mongo")
	flagSet.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flagSet.BoolVar(&opts.trace, "trace", false, "export capability spans")
	flagSet.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC collector address (default: spans printed to stderr)")
	flagSet.StringVar(&opts.tokenizer, "tokenizer", "gpt-3.5-turbo", "model or encoding used to count prompt tokens; empty disables")
	flagSet.Float64Var(&opts.rps, "rps", 0, "maximum calls per second to each capability; 0 disables limiting")
	flagSet.IntVar(&opts.burst, "burst", 1, "burst size for --rps")
	flagSet.StringVar(&opts.logLevel, "log-level", config.GetEnv("CHAINSOCKET_LOG_LEVEL", "warn"), "log level: debug, info, warn or error")
	flagSet.StringVar(&opts.logFormat, "log-format", config.GetEnv("CHAINSOCKET_LOG_FORMAT", "text"), "log format: text or json")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	log := logging.New(os.Stderr, opts.logFormat, logging.ParseLevel(opts.logLevel))
	logging.SetLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := config.LoadApp(opts.appPath)
	if err != nil {
		return err
	}
	host, closeAll, err := setup(ctx, app, opts, log)
	if err != nil {
		return err
	}
	defer closeAll()

	session := opts.session
	if session == "" {
		session = uuid.NewString()
	}
	log.Info("chat session started", "session_id", session, "entry", app.Entry)

	return chat(ctx, runtime.NewAgentExecutor(host, app.Entry), session, os.Stdin, os.Stdout)
}

// setup builds the host with its ambient services. The returned function
// releases everything setup acquired; on error setup releases it itself.
func setup(ctx context.Context, app *config.App, opts options, log *slog.Logger) (*runtime.Host, func(), error) {
	var cleanups []func()
	closeAll := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	secrets, err := config.LoadSecrets(opts.secretsPath)
	if err != nil {
		return nil, nil, err
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint: opts.otlpEndpoint,
		Writer:   os.Stderr,
		Disable:  !opts.trace,
		Logger:   log.With("component", "telemetry"),
	})
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, func() { shutdown(context.Background()) })

	vars, closeStore, err := store.Open(ctx, opts.memory)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("failed to open %s memory: %w", opts.memory, err)
	}
	cleanups = append(cleanups, func() { closeStore() })

	chain := []middleware.Middleware{
		logger.NewRequestLogger(log.With("component", "middleware")),
		logger.NewResponseLogger(log.With("component", "middleware")),
	}
	if opts.rps > 0 {
		if err := config.ValidateRateLimiterConfig(opts.rps, opts.burst); err != nil {
			closeAll()
			return nil, nil, err
		}
		chain = append(chain, limiter.NewRateLimiter(opts.rps, opts.burst, limiter.WithWait()))
	}
	if opts.metricsAddr != "" {
		m, err := metrics.New(nil)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		chain = append([]middleware.Middleware{m}, chain...)
		srv := &http.Server{Addr: opts.metricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", "error", err)
			}
		}()
		cleanups = append(cleanups, func() { srv.Close() })
	}

	hostOpts := []runtime.Option{
		runtime.WithLogger(log.With("component", "host")),
		runtime.WithTracer(telemetry.Tracer()),
		runtime.WithMemoryStore(vars),
		runtime.WithMiddleware(chain...),
	}
	if opts.tokenizer != "" {
		tok, err := tiktoken.NewTiktokenTokenizer(opts.tokenizer)
		if err != nil {
			log.Warn("prompt token counting disabled", "error", err)
		} else {
			hostOpts = append(hostOpts, runtime.WithTokenizer(tok))
		}
	}

	host, err := runtime.Build(ctx, app, secrets, hostOpts...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() {
		if err := host.Close(); err != nil {
			log.Warn("failed to close host", "error", err)
		}
	})
	return host, closeAll, nil
}

// chat reads one question per line from in and writes each answer to out
// until the exit word, end of input or cancellation. A failed turn is
// reported and the chat goes on.
func chat(ctx context.Context, exec runtime.Executor, session string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You > ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == exitWord {
			return nil
		}
		if line == "" {
			continue
		}

		result, err := exec.Execute(ctx, &runtime.Request{SessionID: session, Input: line})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Agent: %s\n", result.Output)
	}
}
