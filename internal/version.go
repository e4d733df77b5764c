package internal

// Version is the application version, overridable at build time via
// -ldflags "-X github.com/roostaq/irasutoya-images-english/internal.Version=...".
var Version = "1.1.0"
