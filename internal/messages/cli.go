package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "genv"
	// RootShort is the short description for the root command.
	RootShort       = "Install packages into isolated global environments"
	RootLong        = "genv installs packages into named global environments below $GENV_HOME (default ~/.genv)\nand exposes their executables as shims in $GENV_HOME/bin."
	RootVersionFlag = "Print version and exit"
	RootVerboseFlag = "Print solver progress and the manifest diff"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// InstallUse is the install command usage.
	InstallUse          = "install <package>..."
	InstallShort        = "Install packages into global environments"
	InstallLong         = "Install each package into its own environment named after the package, or all of them into\nthe environment given with --environment. Every executable a package ships is exposed unless\n--expose lists the executables explicitly."
	InstallFlagChannel  = "Channel to resolve packages from (repeatable; default from config.toml)"
	InstallFlagPlatform = "Platform to install for instead of the current one"
	InstallFlagEnv      = "Install every package into this environment"
	InstallFlagExpose   = "Expose an executable as exposed=executable or executable (repeatable; needs a single environment)"
	InstallFlagYes      = "Answer yes to every prompt"
	InstallDiffHeader   = "Manifest changes:"

	// SyncUse is the sync command name.
	SyncUse       = "sync"
	SyncShort     = "Converge environments and shims to the global manifest"
	SyncSyncedFmt = "Synced environment %s\n"

	// ListUse is the list command name.
	ListUse              = "list"
	ListShort            = "List global environments"
	ListFlagFormat       = "Output format: text, json or yaml"
	ListFormatInvalidFmt = "unknown format %q (expected text, json or yaml)"
	ListEmpty            = "No global environments installed."
	ListChannelsFmt      = "  channels: %s\n"
	ListPlatformFmt      = "  platform: %s\n"
	ListDependencyFmt    = "  dependency: %s\n"
	ListExposedFmt       = "  exposed: %s -> %s\n"
)
