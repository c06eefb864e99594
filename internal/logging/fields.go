// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldInput      = "input"
	FieldWorkingDir = "working_dir"
	FieldLayer      = "layer"

	// Configuration fields.
	FieldFlavor   = "flavor"
	FieldMaxDepth = "max_depth"

	// Pipeline fields.
	FieldElements   = "elements"
	FieldChildren   = "children"
	FieldBlocks     = "blocks"
	FieldReferences = "references"
	FieldCodeBlocks = "code_blocks"
	FieldKind       = "kind"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
