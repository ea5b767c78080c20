package domain

import (
	"go.trai.ch/corepm/internal/core/exprs"
	"go.trai.ch/zerr"
)

var (
	// ErrMalformedIdentifier is returned when a VLNV token cannot be parsed.
	ErrMalformedIdentifier = zerr.New("malformed identifier")

	// ErrExprSyntax is returned when a flag expression does not follow the grammar.
	ErrExprSyntax = exprs.ErrSyntax

	// ErrSchemaViolation is returned when a core description does not match its schema.
	ErrSchemaViolation = zerr.New("core description schema violation")

	// ErrUnknownFileType is returned when a file carries a type outside the known set.
	ErrUnknownFileType = zerr.New("unknown file type")

	// ErrUnknownPackage is returned when a dependency names an identity no core provides.
	ErrUnknownPackage = zerr.New("unknown package")

	// ErrUnknownTarget is returned when the requested target does not exist in the toplevel core.
	ErrUnknownTarget = zerr.New("unknown target")

	// ErrUnknownFileset is returned when a target references a fileset that is not defined.
	ErrUnknownFileset = zerr.New("unknown fileset")

	// ErrUnknownParameter is returned when a target references a parameter that is not defined.
	ErrUnknownParameter = zerr.New("unknown parameter")

	// ErrInvalidParameterValue is returned when a parameter value does not fit its datatype.
	ErrInvalidParameterValue = zerr.New("invalid parameter value")

	// ErrUnknownScript is returned when a hook references a script that is not defined.
	ErrUnknownScript = zerr.New("unknown script")

	// ErrUnknownVPI is returned when a target references a VPI library that is not defined.
	ErrUnknownVPI = zerr.New("unknown vpi library")

	// ErrUnsatisfiable is returned when no selection of cores satisfies all constraints.
	ErrUnsatisfiable = zerr.New("dependencies cannot be satisfied")

	// ErrGeneratorFailed is returned when a generator exits non-zero, times out, or produces no core.
	ErrGeneratorFailed = zerr.New("generator failed")

	// ErrUnknownGenerator is returned when a generate entry references an unknown generator.
	ErrUnknownGenerator = zerr.New("unknown generator")

	// ErrCycleDetected is returned when a cycle is detected in the core dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrSanitizeCollision is returned when two identities sanitize to the same token.
	ErrSanitizeCollision = zerr.New("sanitized name collision")

	// ErrMissingDependency is returned when a graph node references a node that was never added.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrPackageAlreadyExists is returned when a node with the same identity is added twice.
	ErrPackageAlreadyExists = zerr.New("package already exists")

	// ErrConfigNotFound is returned when an explicitly requested configuration file is missing.
	ErrConfigNotFound = zerr.New("configuration file not found")

	// ErrUnsupportedLockfile is returned when a lockfile declares an unknown format version.
	ErrUnsupportedLockfile = zerr.New("unsupported lockfile version")
)
