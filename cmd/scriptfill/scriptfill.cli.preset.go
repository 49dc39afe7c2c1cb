package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/itsatony/go-scriptfill"
)

// presetConfig holds parsed preset command configuration
type presetConfig struct {
	global globalConfig
	source templateSource
	format string
	sub    string
	name   string
}

func runPreset(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parsePresetFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	template, hasTemplate, err := cfg.source.read(stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	ctx := context.Background()
	sess, code := openSession(ctx, &cfg.global, stderr)
	if sess == nil {
		return code
	}
	defer sess.Close()
	engine := sess.engine

	if !hasTemplate {
		template = engine.Template()
	}

	var preset *scriptfill.Preset
	switch cfg.sub {
	case SubCmdPresetList:
		return writePresetList(engine.ListPresets(), cfg.format, stdout, stderr)
	case SubCmdPresetShow:
		preset, err = engine.GetPreset(cfg.name)
	case SubCmdPresetSave:
		preset, err = engine.SavePreset(ctx, cfg.name, template)
	case SubCmdPresetUpdate:
		preset, err = engine.UpdatePreset(ctx, cfg.name, template)
	case SubCmdPresetDelete:
		err = engine.DeletePreset(ctx, cfg.name)
	case SubCmdPresetUse:
		err = engine.UsePreset(ctx, cfg.name)
	}
	if err != nil && !sess.warnIfNotPersisted(err) {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgPresetFailed, err)
		return presetExitCode(err)
	}

	if preset == nil && cfg.sub != SubCmdPresetUse {
		return ExitCodeSuccess
	}
	switch cfg.sub {
	case SubCmdPresetShow:
		if cfg.format == OutputFormatJSON {
			return writeJSONOrFail(stdout, stderr, preset)
		}
		fmt.Fprintln(stdout, preset.Template)
	case SubCmdPresetSave, SubCmdPresetUpdate:
		if cfg.format == OutputFormatJSON {
			return writeJSONOrFail(stdout, stderr, preset)
		}
		fmt.Fprintf(stdout, PresetListFormat, preset.Name, preset.ID, preset.UpdatedAt.Format(TimestampLayout))
	case SubCmdPresetUse:
		fmt.Fprintf(stdout, ActivePresetFormat, engine.ActivePreset())
	}
	return ExitCodeSuccess
}

func parsePresetFlags(args []string) (*presetConfig, error) {
	if len(args) == 0 {
		return nil, errors.New(ErrMsgMissingSubcommand)
	}

	cfg := &presetConfig{sub: args[0]}
	fs := newFlagSet(CmdNamePreset)
	cfg.global.register(fs)
	cfg.source.register(fs)
	registerFormat(fs, &cfg.format)

	positional, err := parseInterspersed(fs, args[1:])
	if err != nil {
		return nil, err
	}
	if err := validateFormat(cfg.format); err != nil {
		return nil, err
	}

	switch cfg.sub {
	case SubCmdPresetList:
		if len(positional) > 0 {
			return nil, errors.New(ErrMsgTooManyArguments)
		}
		return cfg, nil
	case SubCmdPresetShow, SubCmdPresetSave, SubCmdPresetUpdate, SubCmdPresetDelete, SubCmdPresetUse:
	default:
		return nil, fmt.Errorf(FmtDetail, ErrMsgUnknownSubcommand, cfg.sub)
	}

	switch len(positional) {
	case 0:
		return nil, errors.New(ErrMsgMissingArgument)
	case 1:
		cfg.name = positional[0]
	default:
		return nil, errors.New(ErrMsgTooManyArguments)
	}
	return cfg, nil
}

func writePresetList(presets []*scriptfill.Preset, format string, stdout, stderr io.Writer) int {
	if format == OutputFormatJSON {
		if presets == nil {
			presets = []*scriptfill.Preset{}
		}
		return writeJSONOrFail(stdout, stderr, presets)
	}
	for _, p := range presets {
		fmt.Fprintf(stdout, PresetListFormat, p.Name, p.ID, p.UpdatedAt.Format(TimestampLayout))
	}
	return ExitCodeSuccess
}

func presetExitCode(err error) int {
	switch {
	case errors.Is(err, scriptfill.ErrPresetNotFound):
		return ExitCodeInputError
	case errors.Is(err, scriptfill.ErrPresetExists), errors.Is(err, scriptfill.ErrEmptyPresetName):
		return ExitCodeValidationError
	default:
		return ExitCodeError
	}
}

func writeJSONOrFail(stdout, stderr io.Writer, v any) int {
	if err := writeJSON(stdout, v); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgJSONMarshalFailed, err)
		return ExitCodeError
	}
	return ExitCodeSuccess
}
