package model

// UpdateResult represents the outcome of an update run
type UpdateResult struct {
	Previous        *Sources // Record before the run
	Current         *Sources // Record after the run; equals Previous when up to date
	TagName         string   // Upstream tag the run resolved
	Updated         bool     // Whether sources and lockfile were regenerated
	LockfilePatched bool     // Whether the import preamble substitution matched
}

// CheckResult represents the outcome of a version check without side effects
type CheckResult struct {
	Current  string // Recorded version
	Latest   string // Normalized upstream version
	TagName  string // Raw upstream tag
	UpToDate bool
}
