package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	_config "github.com/karagenc/prestic/internal/config"
	"github.com/karagenc/prestic/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	settings *_config.Settings
	v        *viper.Viper

	debugLog = zap.NewNop()

	rootCmd = &cobra.Command{
		Use:   "prestic",
		Short: "Compile a backup document into restic commands",
	}
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		exit(exitErrAny)
	}
	exit(exitSuccess)
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(doctorCmd)

	f := rootCmd.PersistentFlags()
	f.StringP("config", "c", "", "Document file, - for stdin")
	f.String("tool", "restic", "Command used to invoke restic, e.g. \"sudo -E restic\"")
	f.StringP("format", "f", _config.FormatText, "Output format: text, json or table")
	f.Bool("expand-env", false, "Expand $VAR references in env values, flag values and args")
	f.Bool("enable-log", false, "Enable debug logging to stderr")

	cobra.OnInitialize(func() {
		err := initLogging()
		if err != nil {
			errPrintln(err)
			exit(exitErrAny)
		}
		settings, v, err = _config.Read(rootCmd.PersistentFlags())
		if err != nil {
			errPrintln(err)
			exit(exitErrAny)
		}
		debugLog.Debug("settings", zap.Any("settings", v.AllSettings()))
	})
}

type exitCode int

const (
	exitSuccess exitCode = iota
	exitErrAny
	exitTerm
)

func errPrintln(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", utils.Red.Sprint("Error:"), err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(os.Stderr, "%s %s\n", utils.Faint.Sprint("Hint:"), hint)
	}
}

var (
	exitHandlers   []func()
	exitHandlersMu sync.Mutex
)

func addExitHandler(f func()) {
	exitHandlersMu.Lock()
	exitHandlers = append(exitHandlers, sync.OnceFunc(f))
	exitHandlersMu.Unlock()
}

func onExit() {
	exitHandlersMu.Lock()
	defer exitHandlersMu.Unlock()
	for _, f := range exitHandlers {
		f()
	}
}

func exit(code exitCode) {
	onExit()
	os.Exit(int(code))
}
