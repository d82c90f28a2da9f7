package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/Neumenon/jayson/bson"
	"github.com/Neumenon/jayson/jayson"
)

// docStats summarizes a value tree.
type docStats struct {
	Nodes    int
	MaxDepth int
	Counts   [jayson.TypeObject + 1]int
	Members  int // object members across the tree
}

func collectStats(v *jayson.Value) docStats {
	var s docStats
	s.walk(v, 1)
	return s
}

func (s *docStats) walk(v *jayson.Value, depth int) {
	s.Nodes++
	s.Counts[v.Type()]++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}

	switch v.Type() {
	case jayson.TypeArray:
		for _, elem := range v.AsArray() {
			s.walk(elem, depth+1)
		}
	case jayson.TypeObject:
		v.AsObject().Range(func(_ string, member *jayson.Value) bool {
			s.Members++
			s.walk(member, depth+1)
			return true
		})
	}
}

// statCommand prints stats for a document.
type statCommand struct {
	env    *env
	file   *string
	binary *bool
}

func (cmd *statCommand) run(_ *kingpin.ParseContext) error {
	data, err := cmd.env.readInput(*cmd.file)
	if err != nil {
		return err
	}

	var v *jayson.Value
	if *cmd.binary {
		v, err = bson.Unmarshal(data)
	} else {
		v, err = jayson.ParseText(data)
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", displayName(*cmd.file))
	}

	cmd.printStats(displayName(*cmd.file), v)
	return nil
}

func (cmd *statCommand) printStats(name string, v *jayson.Value) {
	s := collectStats(v)
	w := cmd.env.stdout

	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "\tnodes: %s, depth: %d, object members: %s\n",
		humanize.Comma(int64(s.Nodes)), s.MaxDepth, humanize.Comma(int64(s.Members)))
	for t := jayson.TypeNull; t <= jayson.TypeObject; t++ {
		if s.Counts[t] == 0 {
			continue
		}
		fmt.Fprintf(w, "\t\t%s: %s\n", t, humanize.Comma(int64(s.Counts[t])))
	}
	fmt.Fprintf(w, "\ttext size: %v (pretty %v), binary size: %v\n",
		humanize.Bytes(uint64(len(jayson.SerializeText(v, jayson.CompactWriteOptions())))),
		humanize.Bytes(uint64(len(jayson.SerializeText(v, jayson.DefaultWriteOptions())))),
		humanize.Bytes(uint64(len(bson.Marshal(v)))),
	)
	fmt.Fprintf(w, "\tdigest: %016x\n", jayson.Digest(v))
}

func addStatCommand(app *kingpin.Application, e *env) {
	cmd := &statCommand{env: e}
	c := app.Command("stat", "Print node counts, sizes and digest of a document.").Action(cmd.run)
	cmd.binary = c.Flag("binary", "The input is a binary document.").Bool()
	cmd.file = c.Arg("file", "The file to inspect.").String()
}
