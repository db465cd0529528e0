package types

// CLIArgs represents the flags shared by every command.
type CLIArgs struct {
	ConfigFile  string
	Dir         string
	LogLevel    string
	LogFile     string
	MetricsFile string
}
