// Command pageserver serves a single backing file over the page-server wire
// protocol (package protocol): READ/WRITE/FLUSH/DISCARD/STAT against a flat
// byte array.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/IvanBrykalov/blockcache/pageserver"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut *os.File) int {
	flagSet := flag.NewFlagSet("pageserver", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	flagSet.Usage = func() {
		w := flagSet.Output()
		fmt.Fprintf(w, "Usage: pageserver -f FILE [options]\n\nOptions:\n")
		flagSet.PrintDefaults()
	}

	def := pageserver.DefaultConfig()
	file := flagSet.StringP("file", "f", "", "backing file path (required)")
	size := flagSet.StringP("size", "s", "", "backing file size, e.g. 64M, 1G (required iff file does not exist)")
	port := flagSet.IntP("port", "p", def.Port, "listen port")
	addr := flagSet.StringP("addr", "a", def.Addr, "listen address")
	verbose := flagSet.BoolP("verbose", "v", false, "enable verbose logging")
	help := flagSet.BoolP("help", "h", false, "show this help")
	configPath := flagSet.String("config", "", "optional HuJSON config file")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if *help {
		flagSet.SetOutput(out)
		flagSet.Usage()
		return 0
	}

	cfg := def
	if *configPath != "" {
		merged, err := pageserver.LoadConfigFile(cfg, *configPath)
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		cfg = merged
	}
	if *file != "" {
		cfg.File = *file
	}
	if flagSet.Changed("port") {
		cfg.Port = *port
	}
	if flagSet.Changed("addr") {
		cfg.Addr = *addr
	}
	if flagSet.Changed("verbose") {
		cfg.Verbose = *verbose
	}

	if cfg.File == "" {
		fmt.Fprintln(errOut, "error: --file is required")
		return 1
	}

	info, statErr := os.Stat(cfg.File)
	fileExists := statErr == nil
	if fileExists && info.IsDir() {
		fmt.Fprintln(errOut, "error:", cfg.File, "is a directory")
		return 1
	}
	if fileExists && *size != "" {
		fmt.Fprintln(errOut, "error: --size is refused for an existing file")
		return 1
	}
	if !fileExists && *size == "" {
		fmt.Fprintln(errOut, "error: --size is required when creating", cfg.File)
		return 1
	}
	if *size != "" {
		parsed, err := pageserver.ParseSize(*size)
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		cfg.Size = parsed
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	store, err := pageserver.OpenFile(cfg.File, cfg.Size)
	if err != nil {
		fmt.Fprintln(errOut, "error: cannot open backing file:", err)
		return 1
	}

	listenAddr := fmt.Sprintf("%s:%d", cfg.Addr, cfg.Port)
	srv := &pageserver.Server{Addr: listenAddr, Store: store, Log: logger}
	logger.Info("page server starting", "addr", listenAddr, "file", cfg.File)
	if err := srv.ListenAndServe(context.Background()); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}
