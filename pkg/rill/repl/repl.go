package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/rill-lang/rill/pkg/rill/evaluator"
	"github.com/rill-lang/rill/pkg/rill/lexer"
	"github.com/rill-lang/rill/pkg/rill/parser"
)

const PROMPT = ">> "
const CONTINUATION_PROMPT = ".. "

const LOGO = `
█▀█ █ █░░ █░░
█▀▄ █ █▄▄ █▄▄ `

// rill keywords for tab completion; builtin names are appended at startup.
var keywordCompletions = []string{
	"let", "set", "fn", "if", "else", "return", "in", "pipeline",
	"true", "false", "null", "NA", "NA_int", "NA_float", "NA_bool", "NA_str",
}

// Options tweak REPL behavior; the zero value is fine.
type Options struct {
	HistoryFile string
	Prompt      string
}

// Start runs the REPL with line editing, history, and tab completion.
func Start(in io.Reader, out io.Writer, version string, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	completionWords := append([]string{}, keywordCompletions...)
	completionWords = append(completionWords, evaluator.BuiltinNames()...)
	line.SetCompleter(func(line string) []string {
		return filterCompletions(line, completionWords)
	})

	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".rill_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	basePrompt := opts.Prompt
	if basePrompt == "" {
		basePrompt = PROMPT
	}

	env := evaluator.NewEnvironment()

	fmt.Fprintf(out, "%s", LOGO)
	fmt.Fprintln(out, "v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type ':help' for REPL commands")
	fmt.Fprintln(out, "")

	var inputBuffer strings.Builder

	for {
		currentPrompt := basePrompt
		if inputBuffer.Len() > 0 {
			currentPrompt = CONTINUATION_PROMPT
		}
		input, err := line.Prompt(currentPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				if inputBuffer.Len() > 0 {
					fmt.Fprintln(out, "^C (cleared)")
				} else {
					fmt.Fprintln(out, "^C")
				}
				inputBuffer.Reset()
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if inputBuffer.Len() == 0 && (trimmed == "exit" || trimmed == "quit") {
			fmt.Fprintln(out, "Goodbye!")
			return
		}

		if inputBuffer.Len() == 0 && strings.HasPrefix(trimmed, ":") {
			env = handleReplCommand(trimmed, env, out)
			continue
		}

		if inputBuffer.Len() == 0 && trimmed == "" {
			continue
		}

		if inputBuffer.Len() > 0 {
			inputBuffer.WriteString("\n")
		}
		inputBuffer.WriteString(input)

		fullInput := inputBuffer.String()
		if needsMoreInput(fullInput) {
			continue
		}

		if trimmed != "" {
			line.AppendHistory(fullInput)
		}

		l := lexer.New(fullInput)
		p := parser.New(l)
		program := p.ParseProgram()

		if errs := p.Errors(); len(errs) != 0 {
			for _, e := range errs {
				fmt.Fprintln(out, e.PrettyString())
			}
			inputBuffer.Reset()
			continue
		}

		var evaluated evaluator.Object
		evaluated, env = evaluator.EvalProgram(program, env)
		if evaluated != nil {
			if errObj, ok := evaluated.(*evaluator.Error); ok {
				fmt.Fprintln(out, errObj.ToRillError().PrettyString())
			} else if evaluated.Type() == evaluator.NULL_OBJ {
				io.WriteString(out, "OK\n")
			} else {
				io.WriteString(out, evaluated.Inspect())
				io.WriteString(out, "\n")
			}
		}

		inputBuffer.Reset()
	}
}

// handleReplCommand handles REPL meta-commands that start with ':'. It
// returns the environment to continue with, which :clear replaces.
func handleReplCommand(cmd string, env *evaluator.Environment, out io.Writer) *evaluator.Environment {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h, :?   Show this help")
		fmt.Fprintln(out, "  :env            Show variables in scope")
		fmt.Fprintln(out, "  :clear          Clear all user variables")
		fmt.Fprintln(out, "  exit, quit      Exit the REPL")
		return env

	case ":env":
		printEnvironment(env, out)
		return env

	case ":clear":
		fmt.Fprintln(out, "Environment cleared")
		return evaluator.NewEnvironment()

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", cmd)
		return env
	}
}

// printEnvironment displays all user-defined variables in the environment
func printEnvironment(env *evaluator.Environment, out io.Writer) {
	vars := env.Bindings()
	if len(vars) == 0 {
		fmt.Fprintln(out, "(no user variables)")
		return
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		obj := vars[name]
		value := obj.Inspect()
		if len(value) > 60 {
			value = value[:57] + "..."
		}
		fmt.Fprintf(out, "  %s: %s = %s\n", name, string(obj.Type()), value)
	}
}

// filterCompletions returns completion suggestions based on current input
func filterCompletions(line string, words []string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	lastWord := fields[len(fields)-1]

	var matches []string
	for _, word := range words {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, word)
		}
	}
	return matches
}

// needsMoreInput checks if the input has unclosed braces, brackets, or
// parentheses outside of string literals.
func needsMoreInput(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	braceCount := 0
	bracketCount := 0
	parenCount := 0
	inString := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if ch == '\\' {
			escapeNext = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			braceCount++
		case '}':
			braceCount--
		case '[':
			bracketCount++
		case ']':
			bracketCount--
		case '(':
			parenCount++
		case ')':
			parenCount--
		}
	}

	return braceCount > 0 || bracketCount > 0 || parenCount > 0
}
