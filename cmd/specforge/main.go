package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/rcliao/specforge/internal/config"
	"github.com/rcliao/specforge/internal/domain"
	"github.com/rcliao/specforge/internal/logger"
	"github.com/rcliao/specforge/internal/mcp"
	"github.com/rcliao/specforge/internal/report"
	"github.com/rcliao/specforge/internal/service"
	"github.com/rcliao/specforge/internal/source"
	"github.com/rcliao/specforge/internal/storage"
	"github.com/rcliao/specforge/internal/watcher"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Default to MCP stdio mode so the binary can be registered as-is.
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return runServe(args)
	case "cli", "--cli":
		return runCLI(args)
	case "ingest":
		return runIngest(args)
	case "watch":
		return runWatch(args)
	case "init":
		return runInit(args)
	case "mcp-config":
		return runMCPConfig(args, os.Stdout)
	case "verify":
		return runVerify(args, os.Stdout)
	case "version", "--version":
		fmt.Println("specforge", mcp.Version)
		return nil
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: specforge <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve                 Serve MCP tools over stdio (default)")
	fmt.Fprintln(w, "  cli                   Interactive command shell")
	fmt.Fprintln(w, "  ingest <glob>...      Parse specification files and print a summary")
	fmt.Fprintln(w, "  watch [dir]           Re-ingest specification files when they change")
	fmt.Fprintln(w, "  init                  Write a default specforge.yaml")
	fmt.Fprintln(w, "  mcp-config            Print an MCP client entry for this binary")
	fmt.Fprintln(w, "  verify                Check configuration, storage and client registration")
	fmt.Fprintln(w, "  version               Print the version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every command accepts -config <path>.")
}

// app holds what every long-running command needs.
type app struct {
	cfg    config.Config
	store  storage.Store
	engine *service.SpecEngine
}

func setup(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger.Init(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: strings.ToLower(cfg.Log.Format),
		Output: os.Stderr,
	})

	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.ResolvedPath())
	if err != nil {
		return nil, err
	}

	engine, err := service.NewSpecEngine(store, cfg.Roster())
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.Info("specforge ready", "storage", cfg.Storage.Driver, "path", cfg.Storage.ResolvedPath())
	return &app{cfg: cfg, store: store, engine: engine}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Error("failed to close storage", "error", err)
	}
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to specforge.yaml")
	return fs, configPath
}

func runServe(args []string) error {
	fs, configPath := newFlagSet("serve")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	return mcp.ServeStdio(mcp.NewMCPServer(a.engine, a.cfg.Defaults))
}

func runCLI(args []string) error {
	fs, configPath := newFlagSet("cli")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	server := mcp.NewMCPServer(a.engine, a.cfg.Defaults)

	fmt.Println("specforge CLI started")
	fmt.Println("Type 'help' for available commands or 'quit' to exit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for {
		fmt.Print("specforge> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if input == "quit" || input == "exit" {
			fmt.Println("Goodbye!")
			break
		}

		if input == "help" {
			printCLIHelp()
			continue
		}

		handleCommand(server, input)
	}
	return scanner.Err()
}

func printCLIHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  help                           - Show this help")
	fmt.Println("  quit/exit                      - Exit the shell")
	fmt.Println()
	fmt.Println("Commands (JSON parameters):")
	fmt.Println("  specforge.spec.parse           - Parse a specification and generate tasks")
	fmt.Println("  specforge.task.list            - List tasks, optionally filtered")
	fmt.Println("  specforge.task.get             - Get a specific task")
	fmt.Println("  specforge.task.status          - Change a task's status")
	fmt.Println("  specforge.task.validate        - Validate a task")
	fmt.Println("  specforge.task.search          - Search tasks by text, requirement ID, type or agent")
	fmt.Println("  specforge.summary              - Progress, workload and recommendations")
	fmt.Println("  specforge.agent.list           - List agents")
	fmt.Println("  specforge.assignment.list      - List assignments")
	fmt.Println()
	fmt.Println("Example usage:")
	fmt.Println("  specforge.spec.parse {\"content\":\"# Widget\\n\\n- The system must store widgets\",\"format\":\"markdown\"}")
	fmt.Println("  specforge.task.list {\"status\":\"pending\"}")
	fmt.Println("  specforge.task.status {\"id\":\"task-1\",\"status\":\"in-progress\"}")
	fmt.Println("  specforge.task.validate {\"id\":\"task-1\"}")
	fmt.Println("  specforge.task.search {\"query\":\"REQ-001\"}")
}

func handleCommand(server *mcp.MCPServer, input string) {
	parts := strings.SplitN(input, " ", 2)

	method := parts[0]
	var params json.RawMessage

	if len(parts) > 1 {
		paramStr := parts[1]
		if err := json.Unmarshal([]byte(paramStr), &params); err != nil {
			fmt.Printf("Error: Invalid JSON parameters: %v\n", err)
			return
		}
	}

	result, err := server.HandleCommand(method, params)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Printf("Error formatting result: %v\n", err)
		return
	}

	fmt.Println(string(output))
}

type ingestFlags struct {
	format     string
	out        string
	noTasks    bool
	noAssign   bool
	noValidate bool
}

func (f ingestFlags) options(defaults service.ParseOptions) service.ParseOptions {
	opts := defaults
	if f.noTasks {
		opts.GenerateTasks = false
	}
	if f.noAssign {
		opts.AutoAssign = false
	}
	if f.noValidate {
		opts.Validate = false
	}
	return opts
}

func bindIngestFlags(fs *flag.FlagSet) *ingestFlags {
	f := &ingestFlags{}
	fs.StringVar(&f.format, "format", "", "force markdown, yaml or plain instead of detecting by extension")
	fs.StringVar(&f.out, "out", "", "write results as JSON to this file")
	fs.BoolVar(&f.noTasks, "no-tasks", false, "parse only, do not generate tasks")
	fs.BoolVar(&f.noAssign, "no-assign", false, "do not assign generated tasks")
	fs.BoolVar(&f.noValidate, "no-validate", false, "do not validate generated tasks")
	return f
}

// ingestedFile is one entry of the -out JSON document.
type ingestedFile struct {
	Path   string               `json:"path"`
	Result *service.ParseResult `json:"result"`
}

func (a *app) ingest(paths []string, flags *ingestFlags, w io.Writer) ([]ingestedFile, error) {
	format := domain.Format(strings.ToLower(flags.format))
	if format != "" && !format.Valid() {
		return nil, &domain.UnsupportedFormatError{Format: flags.format}
	}

	var results []ingestedFile
	for _, path := range paths {
		file, err := source.Load(path, format)
		if err != nil {
			return results, err
		}

		result, err := a.engine.ParseSpecification(service.ParseRequest{
			Content: file.Content,
			Format:  file.Format,
			Options: flags.options(a.cfg.Defaults),
		})
		if err != nil {
			return results, fmt.Errorf("%s: %w", path, err)
		}

		fmt.Fprintln(w, report.Summary(path, result))
		results = append(results, ingestedFile{Path: path, Result: result})
	}
	return results, nil
}

func runIngest(args []string) error {
	fs, configPath := newFlagSet("ingest")
	flags := bindIngestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("ingest needs at least one file or glob")
	}

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	paths, err := source.Expand(fs.Args(), a.cfg.Watch.Ignore)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no specification files matched")
	}

	return a.ingestAndWrite(paths, flags)
}

// ingestAndWrite ingests paths and, with -out, replaces the JSON file with
// the results of this batch.
func (a *app) ingestAndWrite(paths []string, flags *ingestFlags) error {
	results, err := a.ingest(paths, flags, os.Stdout)
	if err != nil {
		return err
	}

	if flags.out != "" {
		if err := report.WriteJSON(flags.out, results); err != nil {
			return err
		}
		logger.Info("results written", "path", flags.out, "files", len(results))
	}
	return nil
}

func runWatch(args []string) error {
	fs, configPath := newFlagSet("watch")
	flags := bindIngestFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	a, err := setup(*configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	paths, err := source.Expand([]string{source.DirPattern(dir)}, a.cfg.Watch.Ignore)
	if err != nil {
		return err
	}
	if err := a.ingestAndWrite(paths, flags); err != nil {
		logger.Error("initial ingest failed", "error", err)
	}

	w, err := watcher.New(watcher.Config{
		Debounce: a.cfg.Watch.Debounce,
		Ignore:   a.cfg.Watch.Ignore,
	}, func(changed []string) {
		var specs []string
		for _, p := range changed {
			if source.IsSpecFile(p) {
				specs = append(specs, p)
			}
		}
		if len(specs) == 0 {
			return
		}
		if err := a.ingestAndWrite(specs, flags); err != nil {
			logger.Error("re-ingest failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	if err := w.AddRoot(dir); err != nil {
		if stopErr := w.Stop(); stopErr != nil {
			logger.Warn("failed to stop watcher", "error", stopErr)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Start(ctx)
	logger.Info("watching for changes", "dir", dir)
	<-ctx.Done()

	return w.Stop()
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("config", config.DefaultFile, "where to write the configuration")
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", *path)
	}
	if err := os.WriteFile(*path, []byte(config.DefaultYAML()), 0644); err != nil {
		return err
	}
	fmt.Println("Wrote", *path)
	return nil
}

func runMCPConfig(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mcp-config", flag.ContinueOnError)
	client := fs.String("client", config.ClientClaudeDesktop, "client flavour: claude-desktop or standard")
	name := fs.String("name", config.DefaultServerName, "server name in the client config")
	configPath := fs.String("config", "", "specforge.yaml the server should load")
	locations := fs.Bool("locations", false, "list where the client keeps its config instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *locations {
		home, _ := os.UserHomeDir()
		paths := config.ClientConfigLocations(*client, runtime.GOOS, home, os.Getenv)
		if len(paths) == 0 {
			return fmt.Errorf("no known config locations for client %q on %s", *client, runtime.GOOS)
		}
		for _, p := range paths {
			status := "missing"
			if _, err := os.Stat(p); err == nil {
				status = "exists"
			}
			fmt.Fprintf(out, "%s (%s)\n", p, status)
		}
		return nil
	}

	command, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate specforge binary: %w", err)
	}
	entry := config.ServerEntry{
		Command: command,
		Args:    []string{"serve"},
		Env:     map[string]string{"SPECFORGE_LOG_LEVEL": "info"},
	}
	if *configPath != "" {
		abs, err := filepath.Abs(*configPath)
		if err != nil {
			return err
		}
		entry.Args = append(entry.Args, "-config", abs)
	}

	doc, err := config.ClientConfig(*client, *name, entry)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// runVerify checks that the configuration loads, the store opens and, when a
// client config can be found, that specforge is registered in it.
func runVerify(args []string, out io.Writer) error {
	fs, configPath := newFlagSet("verify")
	client := fs.String("client", config.ClientClaudeDesktop, "client flavour: claude-desktop or standard")
	clientConfig := fs.String("client-config", "", "client config file to check (default: first known location)")
	name := fs.String("name", config.DefaultServerName, "server name to look for")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := setup(*configPath)
	if err != nil {
		fmt.Fprintln(out, "❌ configuration or storage:", err)
		return err
	}
	agents, err := a.engine.GetAgents()
	a.Close()
	if err != nil {
		fmt.Fprintln(out, "❌ agent roster:", err)
		return err
	}
	fmt.Fprintf(out, "✅ configuration loaded (storage: %s)\n", a.cfg.Storage.Driver)
	fmt.Fprintf(out, "✅ agent roster: %d agents\n", len(agents))

	path := *clientConfig
	if path == "" {
		home, _ := os.UserHomeDir()
		for _, p := range config.ClientConfigLocations(*client, runtime.GOOS, home, os.Getenv) {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		fmt.Fprintf(out, "➖ no %s config found; run 'specforge mcp-config -client %s'\n", *client, *client)
		return nil
	}

	check, err := config.VerifyClientConfig(*client, path, *name)
	if err != nil {
		fmt.Fprintln(out, "❌ client config:", err)
		return err
	}
	if !check.Found {
		fmt.Fprintf(out, "❌ %s is not registered in %s\n", *name, path)
		return fmt.Errorf("server %q not found in %s", *name, path)
	}
	fmt.Fprintf(out, "✅ %s registered in %s (%s)\n", *name, path, check.Entry.Command)
	return nil
}
