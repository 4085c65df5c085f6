// Command edge-gateway runs the GraphQL partitioning HTTP intermediary.
// Grounded on the teacher's cmd/testServer.go: an http.ServeMux wired to a
// zap-backed logger, started from a cobra root command.
package main

import (
	"fmt"
	"net/http"
	"os"

	al "github.com/jensneuse/abstractlogger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgeql/partitioner/internal/config"
	ilog "github.com/edgeql/partitioner/internal/pkg/log"
	"github.com/edgeql/partitioner/internal/httpserver"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "edge-gateway",
		Short: "GraphQL operation partitioning edge intermediary",
	}
	root.AddCommand(newServeCommand())
	return root
}

func newServeCommand() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(v)
		},
	}
	config.BindFlags(cmd, v)
	return cmd
}

func runServe(v *viper.Viper) error {
	cfg := config.Load(v)
	logger := ilog.New(cfg.Debug)

	handler := httpserver.NewHandler(cfg, logger)
	mux := http.NewServeMux()
	mux.Handle("/graphql", handler)

	logger.Info("starting edge-gateway", al.String("listen_addr", cfg.ListenAddr))
	return http.ListenAndServe(cfg.ListenAddr, mux)
}
