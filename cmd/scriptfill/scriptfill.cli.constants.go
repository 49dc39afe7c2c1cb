package main

import "time"

// Command names
const (
	CmdNameGenerate = "generate"
	CmdNamePreview  = "preview"
	CmdNameMarkers  = "markers"
	CmdNamePreset   = "preset"
	CmdNameField    = "field"
	CmdNameConfig   = "config"
	CmdNameServe    = "serve"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Preset subcommands
const (
	SubCmdPresetList   = "list"
	SubCmdPresetShow   = "show"
	SubCmdPresetSave   = "save"
	SubCmdPresetUpdate = "update"
	SubCmdPresetDelete = "delete"
	SubCmdPresetUse    = "use"
)

// Field subcommands
const (
	SubCmdFieldList        = "list"
	SubCmdFieldShow        = "show"
	SubCmdFieldClear       = "clear"
	SubCmdFieldMode        = "mode"
	SubCmdFieldDeleteOnUse = "delete-on-use"
	SubCmdFieldOverride    = "override"
	SubCmdFieldUnoverride  = "unoverride"
	SubCmdFieldReset       = "reset"
)

// Config subcommands
const (
	SubCmdConfigShow = "show"
	SubCmdConfigSet  = "set"
	SubCmdConfigPath = "path"
)

// Flag names - long form
const (
	FlagTemplate    = "template"
	FlagText        = "text"
	FlagPreset      = "preset"
	FlagSet         = "set"
	FlagProductType = "product-type"
	FlagAction      = "action"
	FlagAtmosphere  = "atmosphere"
	FlagOutput      = "output"
	FlagFormat      = "format"
	FlagMark        = "mark"
	FlagAll         = "all"
	FlagAddr        = "addr"
	FlagHome        = "home"
	FlagStore       = "store"
	FlagDSN         = "dsn"
	FlagLibrary     = "library"
	FlagVerbose     = "verbose"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagPresetShort   = "p"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
	FlagMarkShort     = "m"
	FlagLibraryShort  = "l"
	FlagVerboseShort  = "v"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
	FlagDefaultAddr   = "127.0.0.1:8080"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Environment variables
const (
	EnvHome = "SCRIPTFILL_HOME"
)

// State directory layout under the home directory
const (
	StateDirName = "state"
)

// Toggle values accepted by delete-on-use
const (
	ToggleOn  = "on"
	ToggleOff = "off"
)

// Preference keys accepted by config set
const (
	PrefKeyLibraryPath       = "library_path"
	PrefKeyOutputDir         = "output_dir"
	PrefKeyFontSize          = "font_size"
	PrefKeyTheme             = "theme"
	PrefKeyPlaceholderFormat = "placeholder_format"
	PrefKeyStore             = "store"
	PrefKeyDSN               = "dsn"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgUnknownSubcommand   = "unknown subcommand"
	ErrMsgMissingSubcommand   = "subcommand required"
	ErrMsgMissingArgument     = "missing argument"
	ErrMsgTooManyArguments    = "too many arguments"
	ErrMsgInvalidFlags        = "invalid flags"
	ErrMsgConflictingSources  = "use only one of --template, --text and --preset"
	ErrMsgInvalidOverride     = "override must be field=value"
	ErrMsgInvalidToggle       = "value must be on or off"
	ErrMsgInvalidFormat       = "invalid output format"
	ErrMsgInvalidFontSize     = "font size must be a positive integer"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgResolveHomeFailed   = "failed to resolve state directory"
	ErrMsgOpenStoreFailed     = "failed to open storage"
	ErrMsgCreateEngineFailed  = "failed to create engine"
	ErrMsgLoadLibraryFailed   = "failed to load value library"
	ErrMsgLoadPrefsFailed     = "failed to load preferences"
	ErrMsgSavePrefsFailed     = "failed to save preferences"
	ErrMsgGenerateFailed      = "generation failed"
	ErrMsgMarkUsedFailed      = "failed to mark values used"
	ErrMsgPresetFailed        = "preset operation failed"
	ErrMsgFieldFailed         = "field operation failed"
	ErrMsgServeFailed         = "server failed"
	ErrMsgJSONMarshalFailed   = "failed to marshal JSON"
	ErrMsgYAMLMarshalFailed   = "failed to marshal YAML"
	ErrMsgInvalidRequestBody  = "invalid request body"
	ErrMsgInternalServerError = "internal server error"
)

// Warning messages written to stderr when an operation succeeded in memory
const (
	WarnMsgNotPersisted   = "warning: change not persisted"
	WarnMsgStateNotLoaded = "warning: stored state could not be loaded; changes will not be saved until it loads or 'scriptfill field reset' is run"
	WarnMsgUnresolved     = "warning: unresolved markers"
)

// Help text templates
const (
	HelpMainUsage = `scriptfill - marketing script template filler

Usage:
    scriptfill <command> [options]

Commands:
    generate    Fill a template and advance field state
    preview     Fill a template without changing any state
    markers     List the markers of a template
    preset      Manage named templates
    field       Inspect and configure fields
    config      Show or change preferences
    serve       Run the HTTP API
    version     Show version information
    help        Show help for a command

Global options (engine commands):
    --home <dir>            State directory (default: $SCRIPTFILL_HOME or user config dir)
    --store <driver>        Storage driver: filesystem, memory, postgres
    --dsn <conn>            Storage connection string
    -l, --library <file>    Value library spreadsheet (.xlsx, .xlsm, .csv)
    -v, --verbose           Log to stderr

Use "scriptfill help <command>" for more information about a command.`

	HelpGenerateUsage = `Fill a template and advance field state

Usage:
    scriptfill generate [options]

Options:
    -t, --template <file>      Template file (use "-" for stdin)
    --text <template>          Inline template text
    -p, --preset <name>        Use a saved preset
    --set <field=value>        Override a field for this call (repeatable)
    --product-type <type>      Product type for action markers
    --action <text>            Fixed action text
    --atmosphere <text>        Fixed atmosphere text
    -m, --mark                 Mark the substituted values as used
    -o, --output <file>        Output file (default: stdout)
    -F, --format <format>      Output format: text, json (default: text)

Without a template source the active template is used.

Examples:
    scriptfill generate -l 素材.xlsx --text "{产品类型}穿{材质}"
    scriptfill generate -p 夏季 --set 颜色=白 --mark
    scriptfill generate -F json -o script.json`

	HelpPreviewUsage = `Fill a template without changing any state

Usage:
    scriptfill preview [options]

Options:
    -t, --template <file>      Template file (use "-" for stdin)
    --text <template>          Inline template text
    -p, --preset <name>        Use a saved preset
    --set <field=value>        Override a field for this call (repeatable)
    --product-type <type>      Product type for action markers
    --action <text>            Fixed action text
    --atmosphere <text>        Fixed atmosphere text
    -o, --output <file>        Output file (default: stdout)
    -F, --format <format>      Output format: text, json (default: text)`

	HelpMarkersUsage = `List the markers of a template

Usage:
    scriptfill markers [options]

Options:
    -t, --template <file>      Template file (use "-" for stdin)
    --text <template>          Inline template text
    -F, --format <format>      Output format: text, json (default: text)

Without a template source the active template is inspected.`

	HelpPresetUsage = `Manage named templates

Usage:
    scriptfill preset list
    scriptfill preset show <name>
    scriptfill preset save <name> [-t <file> | --text <template>]
    scriptfill preset update <name> [-t <file> | --text <template>]
    scriptfill preset delete <name>
    scriptfill preset use <name>

Options:
    -t, --template <file>      Template file (use "-" for stdin)
    --text <template>          Inline template text
    -F, --format <format>      Output format: text, json (default: text)

save and update use the active template when no source is given.
use makes the preset's template the active template.`

	HelpFieldUsage = `Inspect and configure fields

Usage:
    scriptfill field list
    scriptfill field show <field>
    scriptfill field clear <field> | --all
    scriptfill field mode [random|sequential]
    scriptfill field delete-on-use [<field> on|off]
    scriptfill field override [<field> <value>]
    scriptfill field unoverride <field>
    scriptfill field reset

Options:
    -F, --format <format>      Output format: text, json (default: text)
    --all                      Clear the used values of every field

reset replaces stored state that failed to load with the current, fresh state.`

	HelpConfigUsage = `Show or change preferences

Usage:
    scriptfill config show [-F text|json|yaml]
    scriptfill config set <key> <value>
    scriptfill config path

Keys:
    library_path, output_dir, font_size, theme, placeholder_format, store, dsn
Other keys are stored verbatim.`

	HelpServeUsage = `Run the HTTP API

Usage:
    scriptfill serve [options]

Options:
    --addr <host:port>         Listen address (default: 127.0.0.1:8080)

All engine calls are serialized; state is persisted like the CLI commands.`

	HelpVersionUsage = `Show version information

Usage:
    scriptfill version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    scriptfill help [command]

Commands:
    generate    Show help for generate command
    preview     Show help for preview command
    markers     Show help for markers command
    preset      Show help for preset command
    field       Show help for field command
    config      Show help for config command
    serve       Show help for serve command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "%s version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// Text output templates
const (
	PresetListFormat     = "%s\t%s\t%s\n"
	FieldListHeader      = "FIELD\tPOOL\tELIGIBLE\tUSED\tCURSOR\tDELETE-ON-USE\n"
	FieldListFormat      = "%s\t%d\t%d\t%d\t%d\t%t\n"
	FieldShowFormat      = "field: %s\npool: %d\neligible: %d\ncursor: %d\ndelete-on-use: %t\nused: %s\n"
	OverrideListFormat   = "%s=%s\n"
	ModeFormat           = "mode: %s\n"
	ActivePresetFormat   = "active preset: %s\n"
	ConfigTextFormat     = "%s: %v\n"
	LibraryLoadedFormat  = "%s (%s)\n"
	ServeListeningFormat = "listening on %s\n"
	ListSeparator        = ", "
	TimestampLayout      = time.RFC3339
)

// HTTP server constants
const (
	ServeReadHeaderTimeout = 10 * time.Second
	ServeShutdownTimeout   = 5 * time.Second
	ServeMaxUploadBytes    = 32 << 20
	HeaderContentType      = "Content-Type"
	HeaderWarning          = "X-Scriptfill-Warning"
	ContentTypeJSON        = "application/json"
	URLParamName           = "name"
	URLParamField          = "field"
	QueryParamFormat       = "format"
	HealthStatusOK         = "ok"
)

// Log messages and fields for the CLI and HTTP server
const (
	LogMsgStorageOpened   = "storage opened"
	LogMsgLibraryLoaded   = "value library loaded"
	LogMsgServerStarting  = "http server starting"
	LogMsgServerStopping  = "http server stopping"
	LogMsgRequestFailed   = "request failed"
	LogMsgRequestServed   = "request served"
	LogMsgNotPersisted    = "change not persisted"
	LogMsgStateNotLoaded  = "stored state not loaded - running on fresh state"
	LogFieldPath          = "path"
	LogFieldSummary       = "summary"
	LogFieldAddr          = "addr"
	LogFieldRequestID     = "request_id"
	LogFieldMethod        = "method"
	LogFieldURLPath       = "url_path"
	LogFieldStatus        = "status"
	LogFieldStorageDriver = "storage_driver"
)

// CLI metadata
const (
	CLIName        = "scriptfill"
	CLIModuleName  = "go-scriptfill"
	CLIDescription = "Marketing script template filler"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtDetail          = "%s: %s"
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
