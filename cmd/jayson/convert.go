package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/jayson/bson"
	"github.com/Neumenon/jayson/jayson"
)

// toBinaryCommand converts a JSON file to the binary layout.
type toBinaryCommand struct {
	env     *env
	in, out *string
}

func (cmd *toBinaryCommand) run(_ *kingpin.ParseContext) error {
	data, err := cmd.env.readInput(*cmd.in)
	if err != nil {
		return err
	}
	v, err := jayson.ParseText(data)
	if err != nil {
		return errors.Wrapf(err, "parse %s", displayName(*cmd.in))
	}

	out := bson.Marshal(v)
	if err := cmd.env.writeOutput(*cmd.out, out); err != nil {
		return err
	}
	level.Info(cmd.env.logger).Log("msg", "converted to binary", "in", displayName(*cmd.in), "out", *cmd.out,
		"text_size", humanize.Bytes(uint64(len(data))), "binary_size", humanize.Bytes(uint64(len(out))))
	return nil
}

// fromBinaryCommand converts a binary document to JSON.
type fromBinaryCommand struct {
	env     *env
	in, out *string
	array   *bool
	compact *bool
}

func (cmd *fromBinaryCommand) run(_ *kingpin.ParseContext) error {
	data, err := cmd.env.readInput(*cmd.in)
	if err != nil {
		return err
	}

	var v *jayson.Value
	if *cmd.array {
		v, err = bson.UnmarshalArray(data)
	} else {
		v, err = bson.Unmarshal(data)
	}
	if err != nil {
		return errors.Wrapf(err, "decode %s", displayName(*cmd.in))
	}

	opts := jayson.DefaultWriteOptions()
	if *cmd.compact {
		opts = jayson.CompactWriteOptions()
	}
	out := append(jayson.SerializeText(v, opts), '\n')
	if err := cmd.env.writeOutput(*cmd.out, out); err != nil {
		return err
	}
	level.Debug(cmd.env.logger).Log("msg", "converted from binary", "in", displayName(*cmd.in), "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func addConvertCommands(app *kingpin.Application, e *env) {
	to := &toBinaryCommand{env: e}
	c := app.Command("to-binary", "Convert a JSON file to the binary layout.").Action(to.run)
	to.in = c.Arg("in", "JSON input file, - for stdin.").Required().String()
	to.out = c.Arg("out", "Binary output file, - for stdout.").Required().String()

	from := &fromBinaryCommand{env: e}
	c = app.Command("from-binary", "Convert a binary document to JSON.").Action(from.run)
	from.array = c.Flag("array", "Decode the root document as an array.").Bool()
	from.compact = c.Flag("compact", "Write everything on one line.").Bool()
	from.in = c.Arg("in", "Binary input file, - for stdin.").Required().String()
	from.out = c.Arg("out", "JSON output file (default stdout).").String()
}
