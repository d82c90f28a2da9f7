package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/jayson/bson"
	"github.com/Neumenon/jayson/jayson"
	"github.com/Neumenon/jayson/stream"
)

type result struct {
	stdout, stderr string
	err            error
}

func run(fs afero.Fs, stdin string, args ...string) result {
	var stdout, stderr bytes.Buffer
	e := &env{fs: fs, stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}
	_, err := newApp(e).Parse(args)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, fs afero.Fs, name, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
}

func TestFmt(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "in.json", `{"b":[1,2.5],"a":"x","e":{}}`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "pretty by default",
			args: []string{"fmt", "in.json"},
			want: "{\n  \"b\": [\n    1,\n    2.500000\n  ],\n  \"a\": \"x\",\n  \"e\": {}\n}\n",
		},
		{
			name: "compact with precision",
			args: []string{"fmt", "--compact", "--precision=2", "in.json"},
			want: `{"b":[1,2.50],"a":"x","e":{}}` + "\n",
		},
		{
			name: "tab indent and brace on new line",
			args: []string{"fmt", "--indent=\t", "--brace-newline", "--precision=1", "in.json"},
			want: "{\n\t\"b\":\n\t[\n\t\t1,\n\t\t2.5\n\t],\n\t\"a\": \"x\",\n\t\"e\": {}\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(fs, "", tt.args...)
			require.NoError(t, res.err)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestFmtStdin(t *testing.T) {
	res := run(afero.NewMemMapFs(), "[1, true ,null]", "fmt", "--compact")
	require.NoError(t, res.err)
	assert.Equal(t, "[1,true,null]\n", res.stdout)

	res = run(afero.NewMemMapFs(), `"é"`, "fmt", "--escape-unicode", "-")
	require.NoError(t, res.err)
	assert.Equal(t, "\"\\u00e9\"\n", res.stdout)
}

func TestFmtConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "in.json", `[1.5]`)
	writeFile(t, fs, "jayson.yaml", "write:\n  pretty: false\n  precision: 3\n")

	res := run(fs, "", "fmt", "--config=jayson.yaml", "in.json")
	require.NoError(t, res.err)
	assert.Equal(t, "[1.500]\n", res.stdout)

	// flags the user sets win over the file
	res = run(fs, "", "fmt", "--config=jayson.yaml", "--precision=1", "in.json")
	require.NoError(t, res.err)
	assert.Equal(t, "[1.5]\n", res.stdout)

	res = run(fs, "", "fmt", "--config=jayson.yaml", "--no-compact", "in.json")
	require.NoError(t, res.err)
	assert.Equal(t, "[\n  1.500\n]\n", res.stdout)

	writeFile(t, fs, "bad.yaml", "write:\n  colour: true\n")
	res = run(fs, "", "fmt", "--config=bad.yaml", "in.json")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "parse config bad.yaml")
}

func TestFmtErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "bad.json", `{"a" 1}`)
	writeFile(t, fs, "ok.json", `1`)

	res := run(fs, "", "fmt", "bad.json")
	assert.ErrorIs(t, res.err, jayson.ErrSyntax)
	assert.Contains(t, res.err.Error(), "parse bad.json")

	res = run(fs, "", "fmt", "missing.json")
	assert.ErrorIs(t, res.err, os.ErrNotExist)

	res = run(fs, "", "fmt", "--precision=40", "ok.json")
	assert.EqualError(t, res.err, "precision 40 out of range [1, 17]")
}

func TestBinaryRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "in.json", `{"a":1,"b":"x","c":[true,null]}`)

	res := run(fs, "", "to-binary", "in.json", "out.bin")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, `msg="converted to binary"`)

	got, err := afero.ReadFile(fs, "out.bin")
	require.NoError(t, err)
	want, err := jayson.ParseString(`{"a":1,"b":"x","c":[true,null]}`)
	require.NoError(t, err)
	assert.Equal(t, bson.Marshal(want), got)

	res = run(fs, "", "from-binary", "--compact", "out.bin")
	require.NoError(t, res.err)
	assert.Equal(t, `{"a":1,"b":"x","c":[true,null]}`+"\n", res.stdout)

	res = run(fs, "", "from-binary", "out.bin", "back.json")
	require.NoError(t, res.err)
	back, err := afero.ReadFile(fs, "back.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": \"x\",\n  \"c\": [\n    true,\n    null\n  ]\n}\n", string(back))
}

func TestFromBinaryArray(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "arr.bin", bson.Marshal(jayson.Array(jayson.Int32(1), jayson.Str("two"))), 0o644))

	res := run(fs, "", "from-binary", "--array", "--compact", "arr.bin")
	require.NoError(t, res.err)
	assert.Equal(t, `[1,"two"]`+"\n", res.stdout)

	res = run(fs, "", "from-binary", "--compact", "arr.bin")
	require.NoError(t, res.err)
	assert.Equal(t, `{"0":1,"1":"two"}`+"\n", res.stdout)
}

func TestFromBinaryCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "bad.bin", "\x05\x00")

	res := run(fs, "", "from-binary", "bad.bin")
	assert.ErrorIs(t, res.err, jayson.ErrDecodeBounds)
	assert.Contains(t, res.err.Error(), "decode bad.bin")
}

func TestStat(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `{"a":[1,2.5,"x"],"b":null}`
	writeFile(t, fs, "doc.json", doc)

	res := run(fs, "", "stat", "doc.json")
	require.NoError(t, res.err)

	v, err := jayson.ParseString(doc)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.stdout, "doc.json:\n\tnodes: 6, depth: 3, object members: 2\n"), res.stdout)
	for _, line := range []string{"null: 1", "double: 1", "int32: 1", "string: 1", "array: 1", "object: 1"} {
		assert.Contains(t, res.stdout, "\t\t"+line+"\n")
	}
	assert.NotContains(t, res.stdout, "bool:")
	assert.Contains(t, res.stdout, "binary size: ")
	assert.Contains(t, res.stdout, fmt.Sprintf("\tdigest: %016x\n", jayson.Digest(v)))

	require.NoError(t, afero.WriteFile(fs, "doc.bin", bson.Marshal(v), 0o644))
	res = run(fs, "", "stat", "--binary", "doc.bin")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, fmt.Sprintf("\tdigest: %016x\n", jayson.Digest(v)))
}

func TestCollectStats(t *testing.T) {
	v := jayson.Object(
		jayson.M("list", jayson.Array(jayson.Array(jayson.Uint64(1)))),
		jayson.M("blob", jayson.Binary(0, []byte("x"))),
	)
	s := collectStats(v)
	assert.Equal(t, 5, s.Nodes)
	assert.Equal(t, 4, s.MaxDepth)
	assert.Equal(t, 2, s.Members)
	assert.Equal(t, 2, s.Counts[jayson.TypeArray])
	assert.Equal(t, 1, s.Counts[jayson.TypeUint64])
	assert.Equal(t, 1, s.Counts[jayson.TypeBinary])
}

func frameFile(t *testing.T, write func(w *stream.Writer)) []byte {
	t.Helper()
	var buf bytes.Buffer
	write(stream.NewWriter(&buf, stream.WithCRC()))
	return buf.Bytes()
}

func TestFrames(t *testing.T) {
	fs := afero.NewMemMapFs()
	final := jayson.Array(jayson.Bool(true))
	data := frameFile(t, func(w *stream.Writer) {
		require.NoError(t, w.WriteValue(1, 1, stream.KindText, jayson.Object(jayson.M("a", jayson.Int32(1)))))
		require.NoError(t, w.WritePing(1, 2))
		require.NoError(t, w.WriteErr(1, 3, "oops"))
		require.NoError(t, w.WriteValue(2, 1, stream.KindBinary, jayson.Object(jayson.M("b", jayson.Str("y")))))
		require.NoError(t, w.WriteFinal(1, 4, stream.KindText, final))
	})
	require.NoError(t, afero.WriteFile(fs, "frames.txt", data, 0o644))

	res := run(fs, "", "frames", "frames.txt")
	require.NoError(t, res.err)

	want := "sid=1 seq=1 {\"a\":1}\n" +
		"sid=1 seq=3 err: oops\n" +
		"sid=2 seq=1 {\"b\":\"y\"}\n" +
		"sid=1 seq=4 [true]\n" +
		fmt.Sprintf("sid=1 final digest=%016x\n", jayson.Digest(final))
	assert.Equal(t, want, res.stdout)
	assert.Contains(t, res.stderr, `msg="decoded frames" frames=5 streams=2`)
}

func TestFramesGap(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := frameFile(t, func(w *stream.Writer) {
		require.NoError(t, w.WriteValue(1, 1, stream.KindText, jayson.Int32(1)))
		require.NoError(t, w.WriteValue(1, 3, stream.KindText, jayson.Int32(3)))
	})
	require.NoError(t, afero.WriteFile(fs, "gap.txt", data, 0o644))

	res := run(fs, "", "frames", "gap.txt")
	var seqErr *stream.SeqError
	require.ErrorAs(t, res.err, &seqErr)
	assert.Contains(t, res.err.Error(), "frame 1")

	res = run(fs, "", "frames", "--allow-gaps", "gap.txt")
	require.NoError(t, res.err)
	assert.Equal(t, "sid=1 seq=1 1\nsid=1 seq=3 3\n", res.stdout)
	assert.Contains(t, res.stderr, `level=warn msg="sequence gap" sid=1 expected=2 got=3`)
}

func TestFramesCRC(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "bad.txt", "@frame{v=1 sid=1 seq=1 kind=text len=1 crc=00000000}\n1\n")

	res := run(fs, "", "frames", "bad.txt")
	var crcErr *stream.CRCMismatchError
	require.ErrorAs(t, res.err, &crcErr)

	res = run(fs, "", "frames", "--no-verify-crc", "bad.txt")
	require.NoError(t, res.err)
	assert.Equal(t, "sid=1 seq=1 1\n", res.stdout)
}

func TestVersionAndLogLevel(t *testing.T) {
	res := run(afero.NewMemMapFs(), "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "jayson "+version+"\n", res.stdout)

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "in.json", `1`)
	res = run(fs, "", "--log.level=error", "to-binary", "in.json", "out.bin")
	require.NoError(t, res.err)
	assert.Empty(t, res.stderr)

	res = run(fs, "", "--log.level=loud", "version")
	assert.Error(t, res.err)
}
