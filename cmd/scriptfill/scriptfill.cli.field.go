package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/itsatony/go-scriptfill"
)

// fieldConfig holds parsed field command configuration
type fieldConfig struct {
	global globalConfig
	format string
	all    bool
	sub    string
	args   []string
}

// fieldArgCounts is the accepted positional argument counts per subcommand
var fieldArgCounts = map[string][]int{
	SubCmdFieldList:        {0},
	SubCmdFieldShow:        {1},
	SubCmdFieldClear:       {0, 1},
	SubCmdFieldMode:        {0, 1},
	SubCmdFieldDeleteOnUse: {0, 2},
	SubCmdFieldOverride:    {0, 2},
	SubCmdFieldUnoverride:  {1},
	SubCmdFieldReset:       {0},
}

func runField(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFieldFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	ctx := context.Background()
	sess, code := openSession(ctx, &cfg.global, stderr)
	if sess == nil {
		return code
	}
	defer sess.Close()
	engine := sess.engine

	switch cfg.sub {
	case SubCmdFieldList:
		return writeFieldList(engine.FieldStatuses(), cfg.format, stdout, stderr)
	case SubCmdFieldShow:
		status := engine.FieldStatus(cfg.args[0])
		if cfg.format == OutputFormatJSON {
			return writeJSONOrFail(stdout, stderr, status)
		}
		fmt.Fprintf(stdout, FieldShowFormat, status.Field, status.PoolSize, status.Eligible,
			status.Cursor, status.DeleteOnUse, strings.Join(status.Used, ListSeparator))
		return ExitCodeSuccess
	case SubCmdFieldMode:
		if len(cfg.args) == 1 {
			mode, err := scriptfill.ParseMatchingMode(cfg.args[0])
			if err != nil {
				fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgFieldFailed, err)
				return ExitCodeValidationError
			}
			err = engine.SetMatchingMode(ctx, mode)
			if code := fieldResult(sess, err); code != ExitCodeSuccess {
				return code
			}
		}
		fmt.Fprintf(stdout, ModeFormat, engine.MatchingMode())
		return ExitCodeSuccess
	case SubCmdFieldClear:
		if len(cfg.args) == 1 {
			err = engine.ClearUsed(ctx, cfg.args[0])
		} else {
			err = engine.ClearAllUsed(ctx)
		}
		return fieldResult(sess, err)
	case SubCmdFieldDeleteOnUse:
		if len(cfg.args) == 2 {
			enabled, err := parseToggle(cfg.args[1])
			if err != nil {
				fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
				return ExitCodeUsageError
			}
			if code := fieldResult(sess, engine.SetDeleteOnUse(ctx, cfg.args[0], enabled)); code != ExitCodeSuccess {
				return code
			}
		}
		for _, field := range engine.DeleteOnUseFields() {
			fmt.Fprintln(stdout, field)
		}
		return ExitCodeSuccess
	case SubCmdFieldOverride:
		if len(cfg.args) == 2 {
			if code := fieldResult(sess, engine.SetOverride(ctx, cfg.args[0], cfg.args[1])); code != ExitCodeSuccess {
				return code
			}
		}
		return writeOverrides(engine.Overrides(), cfg.format, stdout, stderr)
	case SubCmdFieldUnoverride:
		return fieldResult(sess, engine.RemoveOverride(ctx, cfg.args[0]))
	case SubCmdFieldReset:
		return fieldResult(sess, engine.ResetState(ctx))
	}
	return ExitCodeSuccess
}

func parseFieldFlags(args []string) (*fieldConfig, error) {
	if len(args) == 0 {
		return nil, errors.New(ErrMsgMissingSubcommand)
	}

	cfg := &fieldConfig{sub: args[0]}
	counts, ok := fieldArgCounts[cfg.sub]
	if !ok {
		return nil, fmt.Errorf(FmtDetail, ErrMsgUnknownSubcommand, cfg.sub)
	}

	fs := newFlagSet(CmdNameField)
	cfg.global.register(fs)
	registerFormat(fs, &cfg.format)
	fs.BoolVar(&cfg.all, FlagAll, false, "")

	positional, err := parseInterspersed(fs, args[1:])
	if err != nil {
		return nil, err
	}
	if err := validateFormat(cfg.format); err != nil {
		return nil, err
	}

	if !slices.Contains(counts, len(positional)) {
		if len(positional) > counts[len(counts)-1] {
			return nil, errors.New(ErrMsgTooManyArguments)
		}
		return nil, errors.New(ErrMsgMissingArgument)
	}
	// clear needs either a field or --all, not both
	if cfg.sub == SubCmdFieldClear && (len(positional) == 1) == cfg.all {
		return nil, errors.New(ErrMsgMissingArgument)
	}
	cfg.args = positional
	return cfg, nil
}

// fieldResult maps a field operation error to an exit code, warning on persistence failures
func fieldResult(sess *session, err error) int {
	if err == nil || sess.warnIfNotPersisted(err) {
		return ExitCodeSuccess
	}
	fmt.Fprintf(sess.stderr, FmtErrorWithCause, ErrMsgFieldFailed, err)
	return ExitCodeError
}

func writeFieldList(statuses []scriptfill.FieldStatus, format string, stdout, stderr io.Writer) int {
	if format == OutputFormatJSON {
		if statuses == nil {
			statuses = []scriptfill.FieldStatus{}
		}
		return writeJSONOrFail(stdout, stderr, statuses)
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, FieldListHeader)
	for _, s := range statuses {
		fmt.Fprintf(tw, FieldListFormat, s.Field, s.PoolSize, s.Eligible, len(s.Used), s.Cursor, s.DeleteOnUse)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}
	return ExitCodeSuccess
}

func writeOverrides(overrides map[string]string, format string, stdout, stderr io.Writer) int {
	if format == OutputFormatJSON {
		if overrides == nil {
			overrides = map[string]string{}
		}
		return writeJSONOrFail(stdout, stderr, overrides)
	}
	fmt.Fprint(stdout, overrideFlag(overrides).lines())
	return ExitCodeSuccess
}

// lines renders the overrides one field=value per line, sorted by field
func (o overrideFlag) lines() string {
	fields := make([]string, 0, len(o))
	for field := range o {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var sb strings.Builder
	for _, field := range fields {
		fmt.Fprintf(&sb, OverrideListFormat, field, o[field])
	}
	return sb.String()
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case ToggleOn:
		return true, nil
	case ToggleOff:
		return false, nil
	}
	return false, errors.New(ErrMsgInvalidToggle)
}
