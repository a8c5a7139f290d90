// chainsocket-search-mcp serves the search tools over MCP, for agents that
// load tools with the mcp plugin:
//
//	tools:
//	  - name: search
//	    plugin: mcp
//	    options:
//	      command: chainsocket-search-mcp
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"github.com/sweetpotato0/chainsocket/config"
	"github.com/sweetpotato0/chainsocket/contrib/search/duckduckgo"
	"github.com/sweetpotato0/chainsocket/contrib/search/serpapi"
	"github.com/sweetpotato0/chainsocket/pkg/logging"
	"github.com/sweetpotato0/chainsocket/tool"
	"github.com/sweetpotato0/chainsocket/tool/mcp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var transport, addr, path, secretsPath string
	flagSet := pflag.NewFlagSet("chainsocket-search-mcp", pflag.ContinueOnError)
	flagSet.StringVar(&transport, "transport", "stdio", "stdio or http")
	flagSet.StringVar(&addr, "addr", "127.0.0.1:8080", "listen address for the http transport")
	flagSet.StringVar(&path, "path", "/mcp", "HTTP path of the streamable endpoint")
	flagSet.StringVar(&secretsPath, "secrets", "", "path to a YAML secrets file")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logger := logging.WithComponent("search-mcp")
	secrets, err := config.LoadSecrets(secretsPath)
	if err != nil {
		return err
	}

	tools := searchTools(secrets)
	for _, t := range tools {
		logger.Info("serving tool", "tool", t.Name)
	}
	server := mcp.NewServer("chainsocket-search", "1.0.0", tools...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch transport {
	case "stdio":
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	case "http":
		handler := sdkmcp.NewStreamableHTTPHandler(func(r *http.Request) *sdkmcp.Server {
			if r.URL.Path == path {
				return server
			}
			return nil
		}, nil)
		mux := http.NewServeMux()
		mux.Handle(path, handler)

		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
		logger.Info("serving MCP streamable endpoint", "url", "http://"+addr+path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported transport %q", transport)
	}
}

// searchTools returns duckduckgo_search, plus google_search when a SerpAPI key is set.
func searchTools(secrets config.Secrets) []*tool.Tool {
	tools := []*tool.Tool{duckduckgo.New(duckduckgo.DefaultConfig()).Tool()}
	if secrets.GoogleAPIKey != "" {
		tools = append(tools, serpapi.New(serpapi.DefaultConfig(secrets.GoogleAPIKey)).Tool())
	}
	return tools
}
