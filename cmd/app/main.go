package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"iron/internal/engine"
	"iron/internal/errors"
	"iron/internal/log"
	"iron/internal/parser"
	"iron/internal/repl"
	"iron/internal/stdlib"
	"iron/internal/util"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// Version is stamped at build time with -ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	timing    bool
	// config file
	configPath string
	// overrides of the config file
	logLevel    string
	logFile     string
	rootPath    string
	debugAST    bool
	debugTxtAST bool
)

// host is the context handed to registered functions. The CLI registers none
// that need it.
type host struct{}

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.BoolVar(&timing, "timing", false, "Print how long the program took to run")
	flag.StringVar(&configPath, "config", "", "Configuration file (.yaml, .yml or .toml)")
	flag.StringVar(&rootPath, "root", "", "Directory relative script paths are resolved against")
	// parser config
	flag.BoolVar(&debugAST, "debug-ast", false, "Render the AST as a JSON file")
	flag.BoolVar(&debugTxtAST, "debug-ast-txt", false, "Render the AST as a text file")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	os.Exit(run())
}

// run returns the exit code, so deferred cleanup happens before os.Exit.
func run() int {
	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := log.InitLogger(config.LogLevel, config.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v; logging disabled\n", err)
	}
	defer log.Close()

	scriptArgs := []string{}
	if flag.NArg() > 1 {
		scriptArgs = flag.Args()[1:]
	}
	e := engine.New[host](
		engine.WithArgs(scriptArgs),
		engine.WithSQL(stdlib.SQLOptions{
			Drivers:      config.SQL.Drivers,
			MaxOpenConns: config.SQL.MaxOpenConns,
			MaxIdleConns: config.SQL.MaxIdleConns,
		}),
	)

	if flag.NArg() == 0 {
		fmt.Printf("iron %s, :help for commands\n", Version)
		r := repl.New(e.NewSession(), &host{}, os.Stdout)
		if err := r.Start(config.REPL); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	return runFile(e, config, flag.Arg(0))
}

func loadConfiguration() (util.Configuration, error) {
	config, err := util.LoadConfiguration(configPath)
	if err != nil {
		return config, err
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "root":
			config.RootPath = rootPath
		case "debug-ast":
			config.DebugJsonAST = debugAST
		case "debug-ast-txt":
			config.DebugTxtAST = debugTxtAST
		}
	})
	return config, nil
}

func runFile(e *engine.Engine[host], config util.Configuration, path string) int {
	if !filepath.IsAbs(path) {
		path = filepath.Join(config.RootPath, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", path, err)
		return 1
	}
	source := string(raw)

	program, err := parser.Parse(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: parser errors:\n", path)
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(os.Stderr, "\t%s\n", line)
		}
		return 1
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	if config.DebugJsonAST {
		if err := parser.WriteASTToJSON(program, base+".ast.json"); err != nil {
			log.L().Warn("failed to write AST", zap.Error(err))
		}
	}
	if config.DebugTxtAST {
		if err := parser.WriteASTToText(program, base+".ast.txt"); err != nil {
			log.L().Warn("failed to write AST", zap.Error(err))
		}
	}

	start := time.Now()
	v, err := e.Eval(&host{}, source, program)
	if timing {
		fmt.Fprintf(os.Stderr, "ran %s in %s\n", path, time.Since(start))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		var rtErr *errors.Error
		if stderrors.As(err, &rtErr) && rtErr.Context != "" {
			fmt.Fprintln(os.Stderr, rtErr.Context)
		}
		return 1
	}
	if !v.IsUnit() {
		fmt.Println(v.Inspect())
	}
	return 0
}

func printVersion() {
	fmt.Printf("iron version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: iron [options] [filename [args...]]

Options:
  -config <path>     Load settings from a .yaml, .yml or .toml file.
  -root <path>       Resolve relative script paths against this directory. Default is '.'
  -debug-ast         Render the AST as a JSON file next to the script.
  -debug-ast-txt     Render the AST as a text file next to the script.
  -timing            Print how long the program took to run.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error, none. Default is 'none'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Flags override the configuration file.

Examples:
  iron                          Start the interactive shell
  iron -log-level=debug         Start with debug logging enabled
  iron main.iron                Execute the provided file
  iron main.iron arg1 arg2      Execute the file, std::sys::args() returns the arguments

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
