package types

// Version is the nixbump release version. Overridden via ldflags at build time.
var Version = "dev"
