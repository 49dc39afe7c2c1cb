package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/itsatony/go-scriptfill"
)

func runConfig(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, ErrMsgMissingSubcommand)
		return ExitCodeUsageError
	}
	sub := args[0]

	var (
		home   string
		format string
	)
	fs := newFlagSet(CmdNameConfig)
	fs.StringVar(&home, FlagHome, "", "")
	registerFormat(fs, &format)

	positional, err := parseInterspersed(fs, args[1:])
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}
	if err := validateFormat(format, OutputFormatYAML); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithDetail, ErrMsgInvalidFormat, format)
		return ExitCodeUsageError
	}

	home, err = resolveHome(home)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgResolveHomeFailed, err)
		return ExitCodeError
	}
	path := filepath.Join(home, scriptfill.PreferencesFileName)

	switch sub {
	case SubCmdConfigPath:
		fmt.Fprintln(stdout, path)
		return ExitCodeSuccess
	case SubCmdConfigShow:
		if len(positional) > 0 {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, ErrMsgTooManyArguments)
			return ExitCodeUsageError
		}
		prefs, err := scriptfill.LoadPreferences(path)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadPrefsFailed, err)
			return ExitCodeInputError
		}
		return writePreferences(prefs, format, stdout, stderr)
	case SubCmdConfigSet:
		if len(positional) != 2 {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, ErrMsgMissingArgument)
			return ExitCodeUsageError
		}
		prefs, err := scriptfill.LoadPreferences(path)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadPrefsFailed, err)
			return ExitCodeInputError
		}
		if err := setPreference(prefs, positional[0], positional[1]); err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
			return ExitCodeValidationError
		}
		if err := prefs.Save(path); err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgSavePrefsFailed, err)
			return ExitCodeError
		}
		return ExitCodeSuccess
	default:
		fmt.Fprintf(stderr, FmtErrorWithDetail, ErrMsgUnknownSubcommand, sub)
		return ExitCodeUsageError
	}
}

// setPreference assigns one preference by its YAML key; unknown keys go to Extras
func setPreference(prefs *scriptfill.Preferences, key, value string) error {
	switch key {
	case PrefKeyLibraryPath:
		prefs.LibraryPath = value
	case PrefKeyOutputDir:
		prefs.OutputDir = value
	case PrefKeyFontSize:
		size, err := strconv.Atoi(value)
		if err != nil || size <= 0 {
			return errors.New(ErrMsgInvalidFontSize)
		}
		prefs.FontSize = size
	case PrefKeyTheme:
		prefs.Theme = value
	case PrefKeyPlaceholderFormat:
		// validated by constructing an engine with it
		if _, err := scriptfill.New(scriptfill.WithPlaceholderFormat(value)); err != nil {
			return err
		}
		prefs.PlaceholderFormat = value
	case PrefKeyStore:
		prefs.Store = value
	case PrefKeyDSN:
		prefs.DSN = value
	default:
		if prefs.Extras == nil {
			prefs.Extras = make(map[string]any)
		}
		prefs.Extras[key] = value
	}
	return nil
}

func writePreferences(prefs *scriptfill.Preferences, format string, stdout, stderr io.Writer) int {
	switch format {
	case OutputFormatJSON:
		return writeJSONOrFail(stdout, stderr, prefs)
	case OutputFormatYAML:
		data, err := yaml.Marshal(prefs)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgYAMLMarshalFailed, err)
			return ExitCodeError
		}
		_, _ = stdout.Write(data)
		return ExitCodeSuccess
	}

	fmt.Fprintf(stdout, ConfigTextFormat, PrefKeyLibraryPath, prefs.LibraryPath)
	fmt.Fprintf(stdout, ConfigTextFormat, PrefKeyOutputDir, prefs.OutputDir)
	fmt.Fprintf(stdout, ConfigTextFormat, PrefKeyFontSize, prefs.FontSize)
	fmt.Fprintf(stdout, ConfigTextFormat, PrefKeyTheme, prefs.Theme)
	fmt.Fprintf(stdout, ConfigTextFormat, PrefKeyPlaceholderFormat, prefs.PlaceholderFormat)
	fmt.Fprintf(stdout, ConfigTextFormat, PrefKeyStore, prefs.Store)
	fmt.Fprintf(stdout, ConfigTextFormat, PrefKeyDSN, prefs.DSN)
	return ExitCodeSuccess
}
