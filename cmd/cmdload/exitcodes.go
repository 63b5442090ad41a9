package main

// Exit codes.
const (
	ExitSuccess       = 0 // Success, or a usage error that was reported
	ExitError         = 1 // General error (invalid name, runtime failure)
	ExitConfigError   = 2 // Configuration error (unreadable config, unknown toolchain)
	ExitCompileFailed = 3 // At least one command failed to compile
	ExitNotFound      = 4 // Command or log not found
)
