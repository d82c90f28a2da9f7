package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/jayson/jayson"
)

// fmtCommand re-emits a JSON document.
type fmtCommand struct {
	env *env

	file       *string
	configFile *string

	compact       bool
	indent        string
	precision     int
	braceNewLine  bool
	escapeUnicode bool

	compactSet, indentSet, precisionSet, braceSet, escapeSet bool
}

func (cmd *fmtCommand) run(_ *kingpin.ParseContext) error {
	opts, err := cmd.options()
	if err != nil {
		return err
	}

	data, err := cmd.env.readInput(*cmd.file)
	if err != nil {
		return err
	}
	v, err := jayson.ParseText(data)
	if err != nil {
		return errors.Wrapf(err, "parse %s", displayName(*cmd.file))
	}

	out := jayson.SerializeText(v, opts)
	level.Debug(cmd.env.logger).Log("msg", "formatted document", "in", len(data), "out", len(out), "pretty", opts.Pretty)
	return cmd.env.writeOutput("", append(out, '\n'))
}

// options layers the flags the user set over the config file.
func (cmd *fmtCommand) options() (jayson.WriteOptions, error) {
	cfg, err := cmd.env.loadConfig(*cmd.configFile)
	if err != nil {
		return jayson.WriteOptions{}, err
	}
	opts := cfg.Write

	if cmd.compactSet {
		opts.Pretty = !cmd.compact
	}
	if cmd.indentSet {
		opts.Indent = cmd.indent
	}
	if cmd.precisionSet {
		if cmd.precision < 1 || cmd.precision > jayson.MaxPrecision {
			return opts, errors.Errorf("precision %d out of range [1, %d]", cmd.precision, jayson.MaxPrecision)
		}
		opts.Precision = cmd.precision
	}
	if cmd.braceSet {
		opts.BraceOnNewLine = cmd.braceNewLine
	}
	if cmd.escapeSet {
		opts.EscapeUnicode = cmd.escapeUnicode
	}
	return opts, nil
}

func addFmtCommand(app *kingpin.Application, e *env) {
	cmd := &fmtCommand{env: e}
	c := app.Command("fmt", "Re-emit a JSON document.").Action(cmd.run)
	c.Flag("compact", "Write everything on one line.").IsSetByUser(&cmd.compactSet).BoolVar(&cmd.compact)
	c.Flag("indent", "Indentation unit for pretty output.").IsSetByUser(&cmd.indentSet).StringVar(&cmd.indent)
	c.Flag("precision", "Digits after the decimal point for doubles.").IsSetByUser(&cmd.precisionSet).IntVar(&cmd.precision)
	c.Flag("brace-newline", "Put a member's container on its own line.").IsSetByUser(&cmd.braceSet).BoolVar(&cmd.braceNewLine)
	c.Flag("escape-unicode", "Write non-ASCII characters as \\u escapes.").IsSetByUser(&cmd.escapeSet).BoolVar(&cmd.escapeUnicode)
	cmd.configFile = c.Flag("config", "YAML file with a write: section.").String()
	cmd.file = c.Arg("file", "The file to format.").String()
}
