package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/rill-lang/rill/pkg/rill/evaluator"
	"github.com/rill-lang/rill/pkg/rill/lexer"
	"github.com/rill-lang/rill/pkg/rill/parser"
	"github.com/rill-lang/rill/pkg/rill/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

var (
	helpFlag        = flag.Bool("h", false, "Show help message")
	helpLongFlag    = flag.Bool("help", false, "Show help message")
	versionFlag     = flag.Bool("V", false, "Show version information")
	versionLongFlag = flag.Bool("version", false, "Show version information")

	evalFlag     = flag.String("e", "", "Evaluate code string")
	evalLongFlag = flag.String("eval", "", "Evaluate code string")
	checkFlag    = flag.Bool("check", false, "Check syntax without executing")
	watchFlag    = flag.Bool("watch", false, "Re-run the script when it changes")
)

// config is read from rill.yaml in the working directory, when present.
type config struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
}

func loadConfig() config {
	var cfg config
	data, err := os.ReadFile("rill.yaml")
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring rill.yaml: %v\n", err)
		return config{}
	}
	return cfg
}

func main() {
	flag.Usage = printHelp
	flag.Parse()

	if *helpFlag || *helpLongFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag || *versionLongFlag {
		fmt.Printf("rill version %s\n", Version)
		os.Exit(0)
	}

	evalCode := *evalFlag
	if evalCode == "" {
		evalCode = *evalLongFlag
	}

	switch {
	case evalCode != "":
		os.Exit(runSource("<eval>", evalCode))
	case *checkFlag:
		files := flag.Args()
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "Error: --check requires at least one file")
			os.Exit(2)
		}
		os.Exit(checkFiles(files))
	case len(flag.Args()) > 0:
		filename := flag.Args()[0]
		if *watchFlag {
			watchFile(filename)
			return
		}
		os.Exit(runFile(filename))
	default:
		cfg := loadConfig()
		repl.Start(os.Stdin, os.Stdout, Version, repl.Options{
			HistoryFile: cfg.HistoryFile,
			Prompt:      cfg.Prompt,
		})
	}
}

func printHelp() {
	fmt.Printf(`rill - rill language interpreter version %s

Usage:
  rill [options] [file]
  rill -e "code"
  rill --check <file>...

Options:
  -h, --help            Show this help message
  -V, --version         Show version information
  -e, --eval <code>     Evaluate code string and print the result
  --check               Check syntax without executing
  --watch               Re-run the script whenever the file changes

Configuration:
  rill.yaml in the working directory may set 'prompt' and 'history_file'
  for the REPL.

Examples:
  rill                      Start interactive REPL
  rill report.rill          Execute a rill script
  rill --watch report.rill  Re-run on every save
  rill -e "1 + 2"           Evaluate inline code (outputs: 3)
  rill --check report.rill  Check syntax without executing
`, Version)
}

func runFile(filename string) int {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return runSource(filename, string(data))
}

func runSource(filename, source string) int {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", filename, e.PrettyString())
		}
		return 1
	}

	env := evaluator.NewEnvironment()
	evaluated, _ := evaluator.EvalProgram(program, env)
	if evaluated == nil {
		return 0
	}
	if errObj, ok := evaluated.(*evaluator.Error); ok {
		fmt.Fprintf(os.Stderr, "%s: %s\n", filename, errObj.ToRillError().PrettyString())
		return 1
	}
	if evaluated.Type() != evaluator.NULL_OBJ {
		fmt.Println(evaluated.Inspect())
	}
	return 0
}

func checkFiles(files []string) int {
	status := 0
	for _, filename := range files {
		data, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", filename, err)
			status = 1
			continue
		}
		l := lexer.New(string(data))
		p := parser.New(l)
		p.ParseProgram()
		if errs := p.Errors(); len(errs) != 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "%s: %s\n", filename, e.String())
			}
			status = 1
			continue
		}
		fmt.Printf("%s: OK\n", filename)
	}
	return status
}

// watchFile runs the script once, then re-runs it on every write event.
// Editors that replace the file atomically emit Create instead of Write, so
// the path is re-added after each event.
func watchFile(filename string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	run := func() {
		fmt.Printf("--- %s\n", filename)
		runFile(filename)
	}
	run()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if event.Has(fsnotify.Create) {
					watcher.Add(filename)
				}
				run()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		}
	}
}
