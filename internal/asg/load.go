package asg

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
)

// Load reads and decodes an ASG document from the given path.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // intentional: reading a user-specified input document
	if err != nil {
		return nil, ErrParse("read %s: %v", path, err)
	}
	g, err := Decode(bytes.NewReader(data))
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			return nil, ErrParse("%s: %s", path, pe.Message)
		}
		return nil, err
	}
	return g, nil
}

// Decode parses an ASG document from the reader. An undecodable document
// returns a *ParseError; a well-formed document with zero nodes returns
// the graph together with an *EmptyGraphError so callers can distinguish
// "unreadable" from "empty but valid".
func Decode(r io.Reader) (*Graph, error) {
	var g Graph
	dec := json.NewDecoder(r)
	if err := dec.Decode(&g); err != nil {
		return nil, ErrParse("decode ASG document: %v", err)
	}
	g.buildIndexes()
	if len(g.Nodes) == 0 {
		return &g, ErrEmptyGraph("job %q declares no nodes", g.JobName)
	}
	return &g, nil
}
