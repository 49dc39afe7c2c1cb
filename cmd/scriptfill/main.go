package main

import (
	"io"
	"os"
)

func main() {
	exitCode := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}

// run is the main entry point for the CLI, separated for testing
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runHelp(nil, stdout)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case CmdNameGenerate:
		return runGenerate(cmdArgs, stdin, stdout, stderr, false)
	case CmdNamePreview:
		return runGenerate(cmdArgs, stdin, stdout, stderr, true)
	case CmdNameMarkers:
		return runMarkers(cmdArgs, stdin, stdout, stderr)
	case CmdNamePreset:
		return runPreset(cmdArgs, stdin, stdout, stderr)
	case CmdNameField:
		return runField(cmdArgs, stdout, stderr)
	case CmdNameConfig:
		return runConfig(cmdArgs, stdout, stderr)
	case CmdNameServe:
		return runServe(cmdArgs, stdout, stderr)
	case CmdNameVersion:
		return runVersion(cmdArgs, stdout, stderr)
	case CmdNameHelp:
		return runHelp(cmdArgs, stdout)
	default:
		// Unknown command - show error and help
		return runHelp([]string{cmd}, stdout)
	}
}
