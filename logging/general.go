package logging

import (
	"io"
	"log/slog"
	"os"
)

func getLogLevel() (lvl slog.Level, wasSet bool) {
	logLevelOS, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		return lvl, false
	}
	err := lvl.UnmarshalText([]byte(logLevelOS))
	if err != nil {
		slog.Warn("Invalid log level", "environ_value", logLevelOS)
	}
	return lvl, true
}

var EnvironmentLvl slog.Level = -2147483648

//Configure logging
//forceEnabler and sink can be nil and they will get sane defaults based on the environment.
func InitializeLogging(lvl slog.Level, forceEnabler ForceEnabler, sink io.Writer) {
	envVarSet := true
	if lvl == EnvironmentLvl {
		lvl, envVarSet = getLogLevel()
	}
	options := slog.HandlerOptions{
		Level: lvl,
	}
	if sink == nil {
		sink = os.Stdout
	}
	logger := slog.New(NewJSONEventCtxHandler(sink, &options, forceEnabler))
	slog.SetDefault(logger)
	if !envVarSet {
		//Warn through the logger that was just installed
		slog.Warn("LOG_LEVEL environment variable not set! Using default logLvl", "logLvl", lvl)
	}
}
