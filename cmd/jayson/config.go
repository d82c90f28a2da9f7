package main

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Neumenon/jayson/jayson"
)

// config is the layout of a --config file:
//
//	write:
//	  pretty: true
//	  indent: "\t"
//	  brace_on_new_line: false
//	  precision: 6
//	  escape_unicode: false
type config struct {
	Write jayson.WriteOptions `yaml:"write"`
}

// loadConfig reads a yaml config. Settings missing from the file keep
// jayson.DefaultWriteOptions.
func (e *env) loadConfig(name string) (config, error) {
	cfg := config{Write: jayson.DefaultWriteOptions()}
	if name == "" {
		return cfg, nil
	}

	data, err := e.readInput(name)
	if err != nil {
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Wrapf(err, "parse config %s", name)
	}
	return cfg, nil
}
