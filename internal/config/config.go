// Package config loads the process's immutable configuration — backend
// table, header allow-list, routing table, and timeouts — via
// github.com/spf13/viper bound to github.com/spf13/cobra flags, the same
// viper.New()+BindPFlags pairing the retrieved corpus's dgraph command
// tree uses for every subcommand's configuration. Once loaded, a Config is
// never mutated; it is injected into the HTTP handler, which hands the
// executor its timeout and the backend client its table and header
// allow-list.
package config

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgeql/partitioner/pkg/backend"
	"github.com/edgeql/partitioner/pkg/routing"
)

// Config is the fully-resolved, immutable process configuration.
type Config struct {
	ListenAddr        string
	Debug             bool
	BackendTable      backend.Table
	HeaderAllowList   backend.HeaderAllowList
	RoutingTable      routing.Table
	SubRequestTimeout time.Duration
	RequestTimeout    time.Duration
}

// BindFlags registers the flags serve reads its configuration from onto
// cmd, and binds them into v so environment variables and a config file can
// also supply values, following the dgraph cmd tree's
// rootConf.BindPFlags(cmd.Flags()) pattern.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()
	flags.String("listen-addr", ":8080", "address the HTTP server listens on")
	flags.Bool("debug", false, "enable development-mode logging")
	flags.Duration("sub-request-timeout", 5*time.Second, "per-sub-request deadline")
	flags.Duration("request-timeout", 10*time.Second, "overall client request deadline")

	v.SetEnvPrefix("EDGE_GATEWAY")
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)
}

// Load resolves a Config from v after flags have been parsed. The backend
// table, header allow-list, and routing table use their built-in defaults;
// an operator wiring a real deployment overrides them by constructing a
// Config directly rather than through additional flags, since those tables
// are structured data rather than scalars BindFlags can express well.
func Load(v *viper.Viper) *Config {
	return &Config{
		ListenAddr:        v.GetString("listen-addr"),
		Debug:             v.GetBool("debug"),
		BackendTable:      backend.DefaultTable(),
		HeaderAllowList:   backend.DefaultHeaderAllowList(),
		RoutingTable:      routing.Table{},
		SubRequestTimeout: v.GetDuration("sub-request-timeout"),
		RequestTimeout:    v.GetDuration("request-timeout"),
	}
}
