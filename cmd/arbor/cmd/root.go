// Package cmd implements the arbor CLI commands.
//
// A root command dispatches to subcommands (demo, config, version).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-drift/arbor/pkg/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(env *Env, args []string) error
}

// Env carries what every command needs.
type Env struct {
	// Dir is the project directory, from --dir or the enclosing module.
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Config resolves arbor.yaml for the project directory.
func (e *Env) Config() (*config.Resolved, error) {
	return config.Resolve(e.Dir)
}

var rootCmd = &Command{
	Name:  "arbor",
	Short: "arbor - retained tree core",
	Long: `arbor drives a retained widget tree: incremental layout, keyed
reconciliation and event dispatch.

Use "arbor <command> --help" for more information about a command.`,
	Usage: "arbor [--dir DIR] <command> [flags]",
}

var (
	commands = make(map[string]*Command)
	ordered  []*Command
)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	ordered = append(ordered, cmd)
}

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	env := &Env{Stdout: os.Stdout, Stderr: os.Stderr}
	return execute(env, args)
}

func execute(env *Env, args []string) error {
	if len(args) == 0 {
		printHelp(env.Stdout)
		return nil
	}

	var filtered []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case len(filtered) == 0 && (arg == "-h" || arg == "--help" || arg == "help"):
			printHelp(env.Stdout)
			return nil
		case len(filtered) == 0 && (arg == "-v" || arg == "--version"):
			printVersion(env.Stdout)
			return nil
		case arg == "--dir":
			if i+1 >= len(args) {
				return fmt.Errorf("--dir requires a directory path")
			}
			env.Dir = args[i+1]
			i++
		case strings.HasPrefix(arg, "--dir="):
			env.Dir = strings.TrimPrefix(arg, "--dir=")
		default:
			filtered = append(filtered, arg)
		}
	}
	if len(filtered) == 0 {
		printHelp(env.Stdout)
		return nil
	}

	if env.Dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			if root, err = os.Getwd(); err != nil {
				return err
			}
		}
		env.Dir = root
	}

	name := filtered[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(env.Stderr, "Error: unknown command %q\n\n", name)
		printHelp(env.Stderr)
		return fmt.Errorf("unknown command: %s", name)
	}
	cmdArgs := filtered[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" {
			printCommandHelp(env.Stdout, cmd)
			return nil
		}
	}
	return cmd.Run(env, cmdArgs)
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "arbor version %s (built %s, config schema %s)\n", Version, BuildTime, config.CurrentVersion)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, rootCmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", rootCmd.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sub := range ordered {
		fmt.Fprintf(w, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -h, --help           Show help for a command")
	fmt.Fprintln(w, "  -v, --version        Show version information")
	fmt.Fprintf(w, "  --dir DIR            Project directory holding %s (default: enclosing module)\n", config.FileName)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  arbor demo --taps 3       Run the counter demo headless")
	fmt.Fprintln(w, "  arbor demo --debug :9090  Serve /tree, /layout and /metrics")
	fmt.Fprintln(w, "  arbor config              Show the resolved configuration")
}

func printCommandHelp(w io.Writer, cmd *Command) {
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
}

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Show the CLI version and the newest config schema it reads.",
		Usage: "arbor version",
		Run: func(env *Env, _ []string) error {
			printVersion(env.Stdout)
			return nil
		},
	})
}
