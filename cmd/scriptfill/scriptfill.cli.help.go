package main

import (
	"fmt"
	"io"
)

func runHelp(args []string, stdout io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stdout, HelpMainUsage)
		return ExitCodeSuccess
	}

	cmd := args[0]
	switch cmd {
	case CmdNameGenerate:
		fmt.Fprintln(stdout, HelpGenerateUsage)
	case CmdNamePreview:
		fmt.Fprintln(stdout, HelpPreviewUsage)
	case CmdNameMarkers:
		fmt.Fprintln(stdout, HelpMarkersUsage)
	case CmdNamePreset:
		fmt.Fprintln(stdout, HelpPresetUsage)
	case CmdNameField:
		fmt.Fprintln(stdout, HelpFieldUsage)
	case CmdNameConfig:
		fmt.Fprintln(stdout, HelpConfigUsage)
	case CmdNameServe:
		fmt.Fprintln(stdout, HelpServeUsage)
	case CmdNameVersion:
		fmt.Fprintln(stdout, HelpVersionUsage)
	case CmdNameHelp:
		fmt.Fprintln(stdout, HelpHelpUsage)
	default:
		fmt.Fprintf(stdout, FmtErrorWithDetail, ErrMsgUnknownCommand, cmd)
		fmt.Fprintln(stdout, HelpMainUsage)
		return ExitCodeUsageError
	}

	return ExitCodeSuccess
}
