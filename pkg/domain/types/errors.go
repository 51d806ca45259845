package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagFetch marks a failed or non-success request to the upstream API
	ErrTagFetch = goerr.NewTag("fetch")

	// ErrTagParse marks a response or file that does not have the expected shape
	ErrTagParse = goerr.NewTag("parse")

	// ErrTagNotFound marks a missing persisted file
	ErrTagNotFound = goerr.NewTag("not_found")

	// ErrTagCommand marks an external process that exited with an error
	ErrTagCommand = goerr.NewTag("command")

	// ErrTagInvalidHash marks hash tool output that is not a well-formed hash
	ErrTagInvalidHash = goerr.NewTag("invalid_hash")

	// ErrTagPatch marks a lockfile whose import preamble could not be patched
	ErrTagPatch = goerr.NewTag("patch")
)
