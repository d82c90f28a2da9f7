package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/Neumenon/jayson/jayson"
	"github.com/Neumenon/jayson/stream"
)

// framesCommand decodes a frame stream and prints each value.
type framesCommand struct {
	env *env

	file      *string
	noVerify  *bool
	allowGaps *bool
	pretty    *bool
}

func (cmd *framesCommand) run(_ *kingpin.ParseContext) error {
	data, err := cmd.env.readInput(*cmd.file)
	if err != nil {
		return err
	}

	opts := []stream.ReaderOption{stream.WithLogger(cmd.env.logger)}
	if *cmd.noVerify {
		opts = append(opts, stream.WithoutCRCVerification())
	}
	r := stream.NewReader(bytes.NewReader(data), opts...)

	writeOpts := jayson.CompactWriteOptions()
	if *cmd.pretty {
		writeOpts = jayson.DefaultWriteOptions()
	}
	text := jayson.NewWriter(writeOpts)
	w := cmd.env.stdout

	h := stream.NewFrameHandler()
	h.OnValue = func(sid, seq uint64, v *jayson.Value, _ *stream.SIDState) error {
		fmt.Fprintf(w, "sid=%d seq=%d %s\n", sid, seq, text.Write(v))
		return nil
	}
	h.OnErr = func(sid, seq uint64, msg string, _ *stream.SIDState) error {
		fmt.Fprintf(w, "sid=%d seq=%d err: %s\n", sid, seq, msg)
		return nil
	}
	h.OnPing = func(sid, seq uint64) error {
		level.Debug(cmd.env.logger).Log("msg", "ping", "sid", sid, "seq", seq)
		return nil
	}
	h.OnFinal = func(sid uint64, state *stream.SIDState) error {
		fmt.Fprintf(w, "sid=%d final digest=%016x\n", sid, state.Digest)
		return nil
	}
	if *cmd.allowGaps {
		h.OnSeqGap = func(sid uint64, expected, got uint64) error {
			level.Warn(cmd.env.logger).Log("msg", "sequence gap", "sid", sid, "expected", expected, "got", got)
			return nil
		}
	}

	var frames int
	for {
		frame, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "frame %d", frames)
		}
		if err := h.Handle(frame); err != nil {
			return errors.Wrapf(err, "frame %d", frames)
		}
		frames++
	}

	level.Info(cmd.env.logger).Log("msg", "decoded frames", "frames", frames, "streams", len(h.Cursor.AllSIDs()))
	return nil
}

func addFramesCommand(app *kingpin.Application, e *env) {
	cmd := &framesCommand{env: e}
	c := app.Command("frames", "Decode a frame stream and print each value.").Action(cmd.run)
	cmd.noVerify = c.Flag("no-verify-crc", "Accept frames whose CRC does not match.").Bool()
	cmd.allowGaps = c.Flag("allow-gaps", "Log sequence gaps instead of failing.").Bool()
	cmd.pretty = c.Flag("pretty", "Pretty-print values.").Bool()
	cmd.file = c.Arg("file", "The frame file, - for stdin.").Required().String()
}
