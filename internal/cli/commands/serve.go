package commands

import (
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/seamsql/seamsql/internal/api"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Host string
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the SQL formatting API server",
		Long: `Start an HTTP server exposing the parser and formatter.

Endpoints:
  GET  /healthz     Liveness probe
  POST /v1/format   Format SQL ({"sql", "mode", "indent", "dialect"})
  POST /v1/parse    Parse SQL into a statement summary ({"sql", "dialect"})

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  # Serve on the configured host and port
  seamsql serve

  # Serve on a custom port
  seamsql serve --port 9090

  # Bind to all interfaces
  seamsql serve --host 0.0.0.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "", "Host to bind (default: 127.0.0.1)")
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "Port to serve on (default: 8080)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg

	// CLI flags override config file
	host := cfg.Serve.Host
	if cmd.Flags().Changed("host") {
		host = opts.Host
	}
	port := cfg.Serve.Port
	if cmd.Flags().Changed("port") {
		port = opts.Port
	}

	server := api.NewServer(api.Config{
		Host:   host,
		Port:   port,
		Syntax: cmdCtx.Syntax,
		Logger: cmdCtx.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := cmdCtx.Renderer
	r.Printf("Starting API server on http://%s\n", net.JoinHostPort(host, strconv.Itoa(port)))
	r.Println("Press Ctrl+C to stop")

	return server.Serve(ctx)
}
