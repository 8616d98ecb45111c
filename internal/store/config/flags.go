package config

import (
	"flag"
	"os"
	"time"

	"github.com/optitask/backend/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   PostgreSQL DSN
//	-t int      migration timeout, minutes
//	-v          debug logging
//
// The args are filtered with flagx.FilterArgs first so flags owned by other
// components (such as -c/-config) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	migrateTimeout := fs.Int("t", int(config.MigrateTimeout.Minutes()), "migration timeout (in minutes)")
	fs.BoolVar(&config.Debug, "v", config.Debug, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.MigrateTimeout = time.Duration(*migrateTimeout) * time.Minute
}
