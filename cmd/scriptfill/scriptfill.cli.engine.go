package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/itsatony/go-scriptfill"
)

// globalConfig holds the flags shared by every command that opens an engine
type globalConfig struct {
	home    string
	store   string
	dsn     string
	library string
	verbose bool
}

func (g *globalConfig) register(fs *flag.FlagSet) {
	fs.StringVar(&g.home, FlagHome, "", "")
	fs.StringVar(&g.store, FlagStore, "", "")
	fs.StringVar(&g.dsn, FlagDSN, "", "")
	fs.StringVar(&g.library, FlagLibrary, "", "")
	fs.StringVar(&g.library, FlagLibraryShort, "", "")
	fs.BoolVar(&g.verbose, FlagVerbose, false, "")
	fs.BoolVar(&g.verbose, FlagVerboseShort, false, "")
}

// session is an opened engine plus the resources it owns
type session struct {
	engine    *scriptfill.Engine
	store     scriptfill.DocumentStore
	prefs     *scriptfill.Preferences
	prefsPath string
	logger    *zap.Logger
	stderr    io.Writer
}

// resolveHome picks the state directory: flag, then $SCRIPTFILL_HOME, then the user config dir
func resolveHome(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(EnvHome); env != "" {
		return env, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CLIName), nil
}

// newLogger returns a development console logger on w when verbose, else a no-op logger
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core, zap.Development())
}

// openSession opens storage, the engine and the value library described by
// the global flags and the preferences file. On failure it reports to stderr
// and returns a nil session with the exit code to use.
func openSession(ctx context.Context, g *globalConfig, stderr io.Writer) (*session, int) {
	home, err := resolveHome(g.home)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgResolveHomeFailed, err)
		return nil, ExitCodeError
	}

	prefsPath := filepath.Join(home, scriptfill.PreferencesFileName)
	prefs, err := scriptfill.LoadPreferences(prefsPath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadPrefsFailed, err)
		return nil, ExitCodeInputError
	}

	logger := newLogger(g.verbose, stderr)

	driver := firstNonEmpty(g.store, prefs.Store, scriptfill.StorageDriverNameFilesystem)
	dsn := firstNonEmpty(g.dsn, prefs.DSN)
	if driver == scriptfill.StorageDriverNameFilesystem && dsn == "" {
		dsn = filepath.Join(home, StateDirName)
	}

	store, err := scriptfill.OpenStorage(driver, dsn)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgOpenStoreFailed, err)
		return nil, ExitCodeError
	}
	logger.Debug(LogMsgStorageOpened, zap.String(LogFieldStorageDriver, driver))

	engine, err := scriptfill.Open(ctx,
		scriptfill.WithStore(store),
		scriptfill.WithLogger(logger),
		scriptfill.WithPlaceholderFormat(prefs.PlaceholderFormat),
	)
	if err != nil && !scriptfill.IsPersistenceError(err) {
		_ = store.Close()
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgCreateEngineFailed, err)
		return nil, ExitCodeValidationError
	}
	if err != nil {
		logger.Warn(LogMsgStateNotLoaded, zap.Error(err))
		fmt.Fprintf(stderr, FmtErrorWithCause, WarnMsgStateNotLoaded, err)
	}

	if libraryPath := firstNonEmpty(g.library, prefs.LibraryPath); libraryPath != "" {
		result, err := engine.LoadLibraryFile(libraryPath)
		if err != nil {
			_ = store.Close()
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgLoadLibraryFailed, err)
			return nil, ExitCodeInputError
		}
		logger.Info(LogMsgLibraryLoaded,
			zap.String(LogFieldPath, libraryPath),
			zap.String(LogFieldSummary, result.Summary()))
	}

	return &session{
		engine:    engine,
		store:     store,
		prefs:     prefs,
		prefsPath: prefsPath,
		logger:    logger,
		stderr:    stderr,
	}, ExitCodeSuccess
}

// Close releases the store and flushes the logger
func (s *session) Close() {
	_ = s.store.Close()
	_ = s.logger.Sync()
}

// warnIfNotPersisted reports a non-fatal persistence failure and
// returns false for any other error
func (s *session) warnIfNotPersisted(err error) bool {
	if !scriptfill.IsPersistenceError(err) {
		return false
	}
	fmt.Fprintf(s.stderr, FmtErrorWithCause, WarnMsgNotPersisted, err)
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
