package main

import (
	"fmt"
	"os"
	"strings"

	"volarb/internal/cli"
	"volarb/internal/config"
	"volarb/internal/logging"
)

// configDirArg scans for the --config flag ahead of cobra's own
// parsing, accepting both the separate and the --config=dir form.
func configDirArg(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

func main() {
	// The config directory must be known before cobra parses flags.
	configDir := config.DefaultConfigDir()
	if dir := configDirArg(os.Args[1:]); dir != "" {
		configDir = dir
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.File
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
