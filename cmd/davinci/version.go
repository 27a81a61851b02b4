package main

// Version info for the davinci server
var (
	// Version is the current version of the davinci server
	Version = "0.1.0"

	// BuildTime is the time at which the binary was built
	BuildTime = "undefined"

	// GitCommit is the git commit that was compiled
	GitCommit = "undefined"
)
