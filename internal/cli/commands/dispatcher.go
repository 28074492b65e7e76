package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"Antenna/internal/cli/apperr"
	"Antenna/internal/config"
)

// Dispatch is the single entry point to execute CLI commands.
// It prints help and usage messages and returns a process exit code.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	// If user passed global --help after flags parsing, show global usage
	for _, a := range os.Args[1:] {
		if a == "--help" || a == "-h" {
			fmt.Fprint(Out, FormatGlobalUsage())
			return 0
		}
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	name := strings.ToLower(args[0])
	if name == "help" { // antenna help [command]
		if len(args) == 1 {
			fmt.Fprint(Out, FormatGlobalUsage())
			return 0
		}
		if c, ok := Get(args[1]); ok {
			fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
			return 0
		}
		fmt.Fprintf(Out, "Unknown command: %s\n\n", args[1])
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	c, ok := Get(name)
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return 2
	default:
		Logger.Debugw("command failed", "command", name, "code", apperr.CodeOf(err).String(), "error", err)
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(Out, hint)
		}
		return 1
	}
}

// errorHint подсказывает следующее действие по виду ошибки.
func errorHint(err error) string {
	switch {
	case errors.Is(err, apperr.ErrPrecondition):
		return "hint: run `antenna login <apple-id> <password>` or set APPLE_ID/APPLE_PASSWORD"
	case errors.Is(err, apperr.ErrAuthentication):
		return "hint: check the Apple ID and password"
	case errors.Is(err, apperr.ErrNetwork):
		return "hint: check the network connection or -url"
	default:
		return ""
	}
}
