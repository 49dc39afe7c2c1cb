package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/itsatony/go-scriptfill"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout.
// Files are replaced atomically.
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	return scriptfill.SaveOutput(path, string(data))
}

// writeJSON writes v as indented JSON followed by a newline
func writeJSON(w io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}

// templateSource holds the mutually exclusive template flags shared by several commands
type templateSource struct {
	path string
	text string
}

func (s *templateSource) register(fs *flag.FlagSet) {
	fs.StringVar(&s.path, FlagTemplate, "", "")
	fs.StringVar(&s.path, FlagTemplateShort, "", "")
	fs.StringVar(&s.text, FlagText, "", "")
}

func (s *templateSource) isSet() bool {
	return s.path != "" || s.text != ""
}

// read returns the template text; ok is false when no source was given
func (s *templateSource) read(stdin io.Reader) (text string, ok bool, err error) {
	if s.text != "" {
		return s.text, true, nil
	}
	if s.path == "" {
		return "", false, nil
	}
	data, err := readInput(s.path, stdin)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// overrideFlag collects repeated --set field=value flags
type overrideFlag map[string]string

func (o overrideFlag) String() string {
	pairs := make([]string, 0, len(o))
	for k, v := range o {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ListSeparator)
}

func (o overrideFlag) Set(value string) error {
	field, val, ok := strings.Cut(value, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return errors.New(ErrMsgInvalidOverride)
	}
	o[field] = val
	return nil
}

// registerFormat binds --format/-F
func registerFormat(fs *flag.FlagSet, format *string) {
	fs.StringVar(format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(format, FlagFormatShort, FlagDefaultFormat, "")
}

// validateFormat accepts text and json plus any extra formats given
func validateFormat(format string, extra ...string) error {
	if format == OutputFormatText || format == OutputFormatJSON {
		return nil
	}
	for _, f := range extra {
		if format == f {
			return nil
		}
	}
	return errors.New(ErrMsgInvalidFormat)
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments and returns the positionals in order
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// newFlagSet creates a flag set that reports errors through the caller
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages
	return fs
}
