package messages

// Identifier validation messages.
const (
	NamesInvalidEnvironmentFmt = "environment name %q must only contain lower-case letters, digits, '-' and '_'"
	NamesExposedEmpty          = "exposed name must not be empty"
	NamesExposedInvalidFmt     = "exposed name %q must not contain whitespace or path separators"
	NamesExposedReservedFmt    = "%q is reserved and cannot be used as an exposed name"
	NamesMappingInvalidFmt     = "mapping %q must have the form exposed_name=executable_name"
	NamesInvalidPackageFmt     = "package name %q is not a valid package name"
)
