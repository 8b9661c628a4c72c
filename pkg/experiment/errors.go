package experiment

import "errors"

// Configuration and usage errors. Each aborts a generation run before any job is written.
var (
	ErrUsage         = errors.New("invalid usage")
	ErrSeedRange     = errors.New("min seed is greater than max seed")
	ErrOutputExists  = errors.New("target folder already exists")
	ErrUnknownSUT    = errors.New("cannot find the specified sut")
	ErrUnknownTool   = errors.New("cannot find the specified tool")
	ErrDuplicateSUT  = errors.New("duplicate sut name")
	ErrMissingEnv    = errors.New("missing environment variable")
	ErrPlatformSetup = errors.New("0 or multiple (>1) dir are found")
	ErrPortRange     = errors.New("port out of range")
	ErrMissingFile   = errors.New("missing required file")
)
