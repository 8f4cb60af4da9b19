package core

// File and directory names
const (
	// AppName is used for the config directory, cache directory, and env prefix.
	AppName = "checklints"
	// ConfigFile is the user configuration filename under the config directory
	ConfigFile = "config.yml"
	// UserChecklistsDir holds user-wide checklists under the config directory
	UserChecklistsDir = "checklists"
	// UserTemplatesDir holds user-wide templates under the config directory
	UserTemplatesDir = "templates"
	// RemoteDir is the per-project directory holding fetched external resources
	RemoteDir = "remote-checklists"
	// EnvPrefix prefixes every environment override, e.g. CHECKLINTS_FAIL_FAST
	EnvPrefix = "CHECKLINTS_"
)

// Result cache table suffixes. Each table is stored as <project>-<suffix>.json.
const (
	pathsTable   = "paths"
	checksTable  = "checks"
	factsTable   = "facts"
	remotesTable = "remotes"
)

// ResourceKind separates fetched checklists from fetched templates on disk.
type ResourceKind string

// ResourceKind constants
const (
	ResourceChecklist ResourceKind = "checklists"
	ResourceTemplate  ResourceKind = "templates"
)

// ProjectChecklistDirs are searched, in order, for checklist files inside a project.
var ProjectChecklistDirs = []string{
	".checklists",
	"checklists",
	"checks",
	".checks",
}

// ProjectChecklistFiles are single checklist files recognized at a project root.
var ProjectChecklistFiles = []string{
	".checklist.yml",
	".checklist.yaml",
	"checklist.yml",
	"checklist.yaml",
}

// hashChunkSize is the read size used when streaming content through SHA-256.
const hashChunkSize = 32 * 1024

// Status reasons reported by check evaluation.
const (
	ReasonConditionNotMet   = "Condition not met"
	ReasonNotImplemented    = "Not implemented"
	ReasonInvalidFile       = "Path is not a valid file"
	ReasonContentsDiffer    = "Contents differ"
	ReasonFragmentNotFound  = "Expected fragment not found in file"
	ReasonTemplateMismatch  = "Populated template does not match file"
	ReasonInvalidDirectory  = "Path is not a valid directory"
	ReasonEntryNotFound     = "Expected entry not found in directory"
	ReasonCommandNotFound   = "Required command not found"
	ReasonEnvVarNotSet      = "Required environment variable not set"
	ReasonTemplateRenderErr = "Failed to render template"
)
