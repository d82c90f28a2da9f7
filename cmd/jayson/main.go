// jayson - JSON and binary document CLI tool
//
// Usage:
//
//	jayson fmt [flags] [file]           Re-emit JSON with the given write options
//	jayson to-binary <in> <out>         Convert a JSON file to the binary layout
//	jayson from-binary <in> [out]       Convert a binary document to JSON
//	jayson stat [--binary] [file]       Print node counts, sizes and digest
//	jayson frames [flags] <file>        Decode a frame stream and print each value
//	jayson version                      Print version info
//
// If no file is given, or the file is "-", input is read from stdin.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const version = "0.1.0"

// env is what commands read from and write to.
type env struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger log.Logger

	logLevel string
}

func main() {
	e := &env{
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	app := newApp(e)
	if _, err := app.Parse(os.Args[1:]); err != nil {
		exitWithErr(err)
	}
}

func exitWithErr(err error) {
	fmt.Fprintf(os.Stderr, "jayson: %v\n", err)
	os.Exit(1)
}

// newApp builds the command line application around e.
func newApp(e *env) *kingpin.Application {
	e.logger = newLogger(e.stderr, "info")

	app := kingpin.New("jayson", "Format, convert and inspect JSON and binary documents.")
	app.HelpFlag.Short('h')
	app.Flag("log.level", "Only log messages with the given severity or above.").
		Default("info").
		EnumVar(&e.logLevel, "debug", "info", "warn", "error")
	app.PreAction(func(*kingpin.ParseContext) error {
		e.logger = newLogger(e.stderr, e.logLevel)
		return nil
	})

	addFmtCommand(app, e)
	addConvertCommands(app, e)
	addStatCommand(app, e)
	addFramesCommand(app, e)

	app.Command("version", "Print version info.").Action(func(*kingpin.ParseContext) error {
		fmt.Fprintf(e.stdout, "jayson %s\n", version)
		return nil
	})
	return app
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}
	return level.NewFilter(logger, opt)
}

// readInput reads a named file, or stdin for "" and "-".
func (e *env) readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return nil, errors.Wrap(err, "read stdin")
		}
		return data, nil
	}
	data, err := afero.ReadFile(e.fs, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	return data, nil
}

// writeOutput writes data to a named file, or stdout for "" and "-".
func (e *env) writeOutput(name string, data []byte) error {
	if name == "" || name == "-" {
		_, err := e.stdout.Write(data)
		return errors.Wrap(err, "write stdout")
	}
	if err := afero.WriteFile(e.fs, name, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	return nil
}

func displayName(name string) string {
	if name == "" || name == "-" {
		return "<stdin>"
	}
	return name
}
