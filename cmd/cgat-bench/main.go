package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cgat-developers/cgat-bench/internal/harness"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "tool":
		tool(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  cgat-bench tool run --config <run.yaml> --tool <name> --input <key=path[,path...]> [--input ...] [--output <path>] [--dry-run]")
	fmt.Fprintln(os.Stderr, "  cgat-bench tool list --config <run.yaml>")
	fmt.Fprintln(os.Stderr, "  cgat-bench tool validate --config <run.yaml>")
}

func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "cgat-bench").Logger()
}

func tool(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	switch args[0] {
	case "run":
		toolRun(args[1:])
	case "list":
		toolList(args[1:])
	case "validate":
		toolValidate(args[1:])
	default:
		usage()
		os.Exit(1)
	}
}

func toolRun(args []string) {
	var configPath string
	var toolName string
	var outputPath string
	var dryRun bool
	inputs := harness.InputSet{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			i++
			if i >= len(args) {
				fatalUsage("--config requires a value")
			}
			configPath = args[i]
		case "--tool":
			i++
			if i >= len(args) {
				fatalUsage("--tool requires a value")
			}
			toolName = args[i]
		case "--input":
			i++
			if i >= len(args) {
				fatalUsage("--input requires a value in the form key=path[,path...]")
			}
			key, node, err := parseInput(args[i])
			if err != nil {
				fatalUsage(err.Error())
			}
			inputs[key] = node
		case "--output":
			i++
			if i >= len(args) {
				fatalUsage("--output requires a value")
			}
			outputPath = args[i]
		case "--dry-run":
			dryRun = true
		default:
			fatalUsage(fmt.Sprintf("unknown argument: %s", args[i]))
		}
	}
	if configPath == "" || toolName == "" {
		fatalUsage("--config and --tool are required")
	}

	log := initLogger()

	cfg, err := harness.LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Str("config", configPath).Msg("load config")
		os.Exit(1)
	}
	resolver := cfg.Resolver()
	reg, err := cfg.BuildRegistry(resolver, log)
	if err != nil {
		log.Error().Err(err).Msg("build tool registry")
		os.Exit(1)
	}

	if outputPath == "" {
		t, ok := reg.Resolve(toolName)
		if !ok {
			log.Error().Str("tool", toolName).Msg("unknown tool")
			os.Exit(1)
		}
		outputPath = t.Descriptor().Output
		if outputPath == "" {
			fatalUsage("--output is required for tools without a default output")
		}
	}

	runner, err := reg.Runner(toolName, cfg.Globals(), log)
	if err != nil {
		log.Error().Err(err).Msg("build runner")
		os.Exit(1)
	}

	opts := harness.ExecOptions{DryRun: dryRun || cfg.OnlyInfo}
	if err := runner.Execute(context.Background(), inputs, outputPath, opts); err != nil {
		log.Error().Err(err).Str("tool", toolName).Str("output", outputPath).Msg("tool execution failed")
		os.Exit(1)
	}
}

func toolList(args []string) {
	configPath := configArg(args)
	log := initLogger()
	cfg, err := harness.LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Str("config", configPath).Msg("load config")
		os.Exit(1)
	}
	reg, err := cfg.BuildRegistry(cfg.Resolver(), log)
	if err != nil {
		log.Error().Err(err).Msg("build tool registry")
		os.Exit(1)
	}
	for _, name := range reg.Names() {
		version, _ := reg.Version(name)
		fmt.Printf("%s\t%s\n", name, version)
	}
}

func toolValidate(args []string) {
	configPath := configArg(args)
	log := initLogger()
	cfg, err := harness.LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Str("config", configPath).Msg("invalid config")
		os.Exit(1)
	}
	if _, err := cfg.BuildRegistry(cfg.Resolver(), log); err != nil {
		log.Error().Err(err).Msg("invalid tool declaration")
		os.Exit(1)
	}
	fmt.Printf("%s: ok (%d tool(s))\n", configPath, len(cfg.Tools)+1)
}

func configArg(args []string) string {
	var configPath string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			i++
			if i >= len(args) {
				fatalUsage("--config requires a value")
			}
			configPath = args[i]
		default:
			fatalUsage(fmt.Sprintf("unknown argument: %s", args[i]))
		}
	}
	if configPath == "" {
		fatalUsage("--config is required")
	}
	return configPath
}

func parseInput(spec string) (string, *harness.InputNode, error) {
	key, value, ok := strings.Cut(spec, "=")
	if !ok || strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
		return "", nil, fmt.Errorf("invalid --input %q, want key=path[,path...]", spec)
	}
	paths := strings.Split(value, ",")
	if len(paths) == 1 {
		return key, harness.PathNode(paths[0]), nil
	}
	return key, harness.ListNode(paths...), nil
}

func fatalUsage(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	usage()
	os.Exit(1)
}
