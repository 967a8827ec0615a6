package main

import (
	"flag"
	"fluggy/internal/config"
	"fluggy/internal/logging"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()

	var err error
	switch flag.Arg(0) {
	case "version":
		fmt.Fprintf(os.Stdout, "Fluggy %s\n", Version)
	case "serve":
		err = run(serve)
	case "migrate":
		err = run(migrateUp)
	case "dev:fixtures":
		err = run(loadFixtures)
	case "help":
		fmt.Fprint(os.Stdout, help())
		return
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

type command func(*config.Config, *zap.Logger) error

// run loads the configuration and logger shared by every command.
func run(cmd command) error {
	conf, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(conf.LogLevel, conf.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync() // nolint:errcheck

	return cmd(conf, log)
}

func help() string {
	return fmt.Sprintf(`
Fluggy serves the per-guild leaderboards of the Discord members that linked
their Steam account.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    serve        start the HTTP server
    migrate      apply the database migrations (needs a postgres:// URL)
    dev:fixtures create default data for quick testing during development
    help         display this help
    version      display the current version

ENVIRONMENT
    FLUGGY_DATABASE_URL                   PostgreSQL URL or DSN, the only
                                          source of database credentials
    FLUGGY_DATABASE_INSECURE_SKIP_VERIFY  skip the server certificate check
    FLUGGY_HTTP_ADDRESS                   listen address (default %[2]s)
    FLUGGY_LOG_LEVEL                      debug, info, warn, error
    FLUGGY_LOG_FORMAT                     console or json

Variables are also read from a .env file in the working directory.
`,
		os.Args[0],
		config.DefaultHTTPAddress,
	)
}
