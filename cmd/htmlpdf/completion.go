package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool   // accepts file arguments
	FilePattern string // glob for file arguments (e.g., "*.html")
}

// completionMeta holds completion-specific metadata for flags.
// This is the ONLY place where completion hints are defined. Flag names,
// types, and descriptions come from the FlagSet.
type completionMeta struct {
	FileGlob string // file glob pattern
	IsDir    bool   // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"config":            {FileGlob: "*.yaml,*.yml"},
	"chrome-executable": {FileGlob: "*"},
	"pdfa-binary":       {FileGlob: "*"},
	"output":            {IsDir: true},
}

// buildRenderFlagSet creates a FlagSet with all render command flags. This
// reuses the same flag registration as parseRenderFlags.
func buildRenderFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output PDF path")
	fs.StringVarP(&f.url, "url", "u", "", "URL to navigate to instead of an HTML file argument")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renderer processes (0 = auto)")
	fs.IntVar(&f.poolSize, "pool-size", 0, "sessions per renderer")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout")
	fs.StringVar(&f.initTimeout, "init-timeout", "", "browser bootstrap timeout")

	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addBrowserFlags(fs, &f.browser)
	addPDFAFlags(fs, &f.pdfa)

	return fs
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			} else if meta.IsDir {
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion. Flags are
// extracted from the actual FlagSet - single source of truth.
func getCommands() []commandDef {
	renderFlags := extractFlagsFromFlagSet(buildRenderFlagSet())

	return []commandDef{
		{
			Name:        "render",
			Desc:        "Render HTML to PDF",
			Flags:       renderFlags,
			TakesFiles:  true,
			FilePattern: "*.html,*.htm",
		},
		{Name: "doctor", Desc: "Diagnose browser and environment issues"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
		{Name: "completion", Desc: "Generate shell completion script"},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

func longFlagNames(cmd commandDef) []string {
	names := make([]string, 0, len(cmd.Flags))
	for _, f := range cmd.Flags {
		names = append(names, "--"+f.Long)
	}
	return names
}

// generateBash writes a bash completion script covering command and flag
// name completion (not per-flag value completion, which bash's builtin
// compgen machinery makes awkward to express portably).
func generateBash(w io.Writer) error {
	commands := getCommands()

	fmt.Fprintln(w, "# bash completion for htmlpdf")
	fmt.Fprintln(w, "_htmlpdf() {")
	fmt.Fprintln(w, "  local cur prev cmds")
	fmt.Fprintln(w, "  cur=\"${COMP_WORDS[COMP_CWORD]}\"")
	fmt.Fprintln(w, "  prev=\"${COMP_WORDS[COMP_CWORD-1]}\"")

	fmt.Fprint(w, "  cmds=\"")
	for i, c := range commands {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprint(w, c.Name)
	}
	fmt.Fprintln(w, "\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  if [[ ${COMP_CWORD} -eq 1 ]]; then")
	fmt.Fprintln(w, "    COMPREPLY=( $(compgen -W \"${cmds}\" -- ${cur}) )")
	fmt.Fprintln(w, "    return")
	fmt.Fprintln(w, "  fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  case \"${COMP_WORDS[1]}\" in")
	for _, c := range commands {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(w, "    %s)\n", c.Name)
		fmt.Fprintf(w, "      COMPREPLY=( $(compgen -W \"%s\" -- ${cur}) )\n", joinSpace(longFlagNames(c)))
		fmt.Fprintln(w, "      ;;")
	}
	fmt.Fprintln(w, "  esac")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "complete -F _htmlpdf htmlpdf")
	return nil
}

func generateZsh(w io.Writer) error {
	commands := getCommands()

	fmt.Fprintln(w, "#compdef htmlpdf")
	fmt.Fprintln(w, "_htmlpdf() {")
	fmt.Fprintln(w, "  local -a cmds")
	fmt.Fprintln(w, "  cmds=(")
	for _, c := range commands {
		fmt.Fprintf(w, "    '%s:%s'\n", c.Name, c.Desc)
	}
	fmt.Fprintln(w, "  )")
	fmt.Fprintln(w, "  _describe 'command' cmds")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "_htmlpdf")
	return nil
}

func generateFish(w io.Writer) error {
	commands := getCommands()

	fmt.Fprintln(w, "# fish completion for htmlpdf")
	for _, c := range commands {
		fmt.Fprintf(w, "complete -c htmlpdf -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, c.Desc)
		for _, f := range c.Flags {
			if f.Short != "" {
				fmt.Fprintf(w, "complete -c htmlpdf -n '__fish_seen_subcommand_from %s' -l %s -s %s -d '%s'\n",
					c.Name, f.Long, f.Short, f.Desc)
			} else {
				fmt.Fprintf(w, "complete -c htmlpdf -n '__fish_seen_subcommand_from %s' -l %s -d '%s'\n",
					c.Name, f.Long, f.Desc)
			}
		}
	}
	return nil
}

func generatePowerShell(w io.Writer) error {
	commands := getCommands()

	fmt.Fprintln(w, "# PowerShell completion for htmlpdf")
	fmt.Fprintln(w, "Register-ArgumentCompleter -Native -CommandName htmlpdf -ScriptBlock {")
	fmt.Fprintln(w, "  param($wordToComplete, $commandAst, $cursorPosition)")
	fmt.Fprint(w, "  $commands = @(")
	for i, c := range commands {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "'%s'", c.Name)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintln(w, "  $commands | Where-Object { $_ -like \"$wordToComplete*\" } |")
	fmt.Fprintln(w, "    ForEach-Object { [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_) }")
	fmt.Fprintln(w, "}")
	return nil
}

func joinSpace(items []string) string {
	return strings.Join(items, " ")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: htmlpdf completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(htmlpdf completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(htmlpdf completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    htmlpdf completion fish > ~/.config/fish/completions/htmlpdf.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    htmlpdf completion powershell | Out-String | Invoke-Expression")
}
