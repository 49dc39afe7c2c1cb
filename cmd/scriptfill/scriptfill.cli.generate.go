package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/itsatony/go-scriptfill"
)

// generateConfig holds parsed generate and preview command configuration
type generateConfig struct {
	global      globalConfig
	source      templateSource
	preset      string
	overrides   overrideFlag
	productType string
	action      string
	atmosphere  string
	outputPath  string
	format      string
	mark        bool
}

func (c *generateConfig) request(template string) scriptfill.GenerateRequest {
	req := scriptfill.GenerateRequest{
		Template:    template,
		Preset:      c.preset,
		ProductType: c.productType,
		Action:      c.action,
		Atmosphere:  c.atmosphere,
	}
	if len(c.overrides) > 0 {
		req.Overrides = c.overrides
	}
	return req
}

func runGenerate(args []string, stdin io.Reader, stdout, stderr io.Writer, preview bool) int {
	cfg, err := parseGenerateFlags(args, preview)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	template, _, err := cfg.source.read(stdin)
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

	req := cfg.request(template)
	var result *scriptfill.GenerationResult
	if preview {
		result, err = sess.engine.Preview(ctx, req)
	} else {
		result, err = sess.engine.Generate(ctx, req)
	}
	if err != nil && !sess.warnIfNotPersisted(err) {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgGenerateFailed, err)
		if errors.Is(err, scriptfill.ErrPresetNotFound) {
			return ExitCodeInputError
		}
		return ExitCodeError
	}

	if cfg.mark {
		if err := sess.engine.Commit(ctx, result); err != nil && !sess.warnIfNotPersisted(err) {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMarkUsedFailed, err)
			return ExitCodeError
		}
	}

	if unresolved := result.Unresolved(); len(unresolved) > 0 {
		fmt.Fprintf(stderr, FmtErrorWithDetail, WarnMsgUnresolved, strings.Join(unresolved, ListSeparator))
	}

	return writeResult(cfg.outputPath, cfg.format, result, stdout, stderr)
}

func writeResult(path, format string, result *scriptfill.GenerationResult, stdout, stderr io.Writer) int {
	var data []byte
	if format == OutputFormatJSON {
		var sb strings.Builder
		if err := writeJSON(&sb, result); err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgJSONMarshalFailed, err)
			return ExitCodeError
		}
		data = []byte(sb.String())
	} else {
		data = []byte(result.Text)
		if path == FlagDefaultOutput {
			data = append(data, FmtNewline...)
		}
	}

	if err := writeOutput(path, data, stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}
	return ExitCodeSuccess
}

func parseGenerateFlags(args []string, preview bool) (*generateConfig, error) {
	name := CmdNameGenerate
	if preview {
		name = CmdNamePreview
	}
	fs := newFlagSet(name)

	cfg := &generateConfig{overrides: overrideFlag{}}
	cfg.global.register(fs)
	cfg.source.register(fs)
	fs.StringVar(&cfg.preset, FlagPreset, "", "")
	fs.StringVar(&cfg.preset, FlagPresetShort, "", "")
	fs.Var(cfg.overrides, FlagSet, "")
	fs.StringVar(&cfg.productType, FlagProductType, "", "")
	fs.StringVar(&cfg.action, FlagAction, "", "")
	fs.StringVar(&cfg.atmosphere, FlagAtmosphere, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	registerFormat(fs, &cfg.format)
	if !preview {
		fs.BoolVar(&cfg.mark, FlagMark, false, "")
		fs.BoolVar(&cfg.mark, FlagMarkShort, false, "")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Validation
	if fs.NArg() > 0 {
		return nil, errors.New(ErrMsgTooManyArguments)
	}
	if err := validateFormat(cfg.format); err != nil {
		return nil, err
	}
	sources := 0
	for _, set := range []bool{cfg.source.path != "", cfg.source.text != "", cfg.preset != ""} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return nil, errors.New(ErrMsgConflictingSources)
	}

	return cfg, nil
}

// markersConfig holds parsed markers command configuration
type markersConfig struct {
	global globalConfig
	source templateSource
	format string
}

func runMarkers(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := &markersConfig{}
	fs := newFlagSet(CmdNameMarkers)
	cfg.global.register(fs)
	cfg.source.register(fs)
	registerFormat(fs, &cfg.format)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}
	if err := validateFormat(cfg.format); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithDetail, ErrMsgInvalidFormat, cfg.format)
		return ExitCodeUsageError
	}

	template, ok, err := cfg.source.read(stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}
	if !ok {
		sess, code := openSession(context.Background(), &cfg.global, stderr)
		if sess == nil {
			return code
		}
		template = sess.engine.Template()
		sess.Close()
	}

	names := scriptfill.ExtractMarkers(template)
	if cfg.format == OutputFormatJSON {
		if names == nil {
			names = []string{}
		}
		if err := writeJSON(stdout, names); err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgJSONMarshalFailed, err)
			return ExitCodeError
		}
		return ExitCodeSuccess
	}
	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	return ExitCodeSuccess
}
