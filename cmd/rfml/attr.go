package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maruel/subcommands"

	"github.com/robert-malhotra/go-rfml/hdf5"
	"github.com/robert-malhotra/go-rfml/rfml"
)

var cmdVars = &subcommands.Command{
	UsageLine: "vars <file>",
	ShortDesc: "Print the field names and dimensions of a convention file.",
	CommandRun: func() subcommands.CommandRun {
		r := &varsRun{}
		r.init()
		return r
	},
}

type varsRun struct {
	baseCommandRun
}

func (r *varsRun) Run(_ subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 1 {
		return r.done(r.usage("one file", args))
	}
	s := r.start()
	names, err := s.ReadVariables(args[0])
	if err != nil {
		return r.done(err)
	}
	dims, err := s.ReadDimensions(args[0])
	if err != nil {
		return r.done(err)
	}
	fmt.Fprintf(r.stdout, "dimensions: %v\n", dims)
	for _, n := range names {
		fmt.Fprintln(r.stdout, n)
	}
	return r.done(nil)
}

var cmdAttr = &subcommands.Command{
	UsageLine: "attr <file> <parent> <name>",
	ShortDesc: "Print an attribute with its stored type.",
	CommandRun: func() subcommands.CommandRun {
		r := &attrRun{}
		r.init()
		return r
	},
}

type attrRun struct {
	baseCommandRun
}

func (r *attrRun) Run(_ subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 3 {
		return r.done(r.usage("file, parent and name", args))
	}
	s := r.start()
	t, err := s.AttributeType(args[0], args[1], args[2])
	if err != nil {
		return r.done(err)
	}
	a, err := s.ReadAttribute(args[0], args[1], args[2])
	if err != nil {
		return r.done(err)
	}
	fmt.Fprintf(r.stdout, "%s %v = %v\n", t, a.Shape, formatValues(a.Data))
	return r.done(nil)
}

var cmdSetAttr = &subcommands.Command{
	UsageLine: "set-attr <file> <parent> <name> <value>...",
	ShortDesc: "Replace an attribute value, keeping its stored type.",
	LongDesc:  "Values are parsed according to the attribute's current type. The file is repacked afterwards.",
	CommandRun: func() subcommands.CommandRun {
		r := &setAttrRun{}
		r.init()
		return r
	},
}

type setAttrRun struct {
	baseCommandRun
}

func (r *setAttrRun) Run(_ subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) < 4 {
		return r.done(r.usage("file, parent, name and at least one value", args))
	}
	s := r.start()
	path, parent, name := args[0], args[1], args[2]
	t, err := s.AttributeType(path, parent, name)
	if err != nil {
		return r.done(err)
	}
	values, err := parseValues(t, args[3:])
	if err != nil {
		return r.done(err)
	}
	return r.done(s.ReplaceAttributeValue(path, parent, name, values))
}

// parseValues converts command line words into a slice suited to t.
func parseValues(t rfml.ElementType, words []string) (any, error) {
	switch t.Class {
	case hdf5.ClassString:
		return words, nil
	case hdf5.ClassInteger:
		out := make([]int64, len(words))
		for i, w := range words {
			v, err := strconv.ParseInt(w, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("value %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case hdf5.ClassFloat:
		out := make([]float64, len(words))
		for i, w := range words {
			v, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return nil, fmt.Errorf("value %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot parse values for %s", t)
}

func formatValues(v any) string {
	if s, ok := v.([]string); ok {
		return "[" + strings.Join(quoteAll(s), " ") + "]"
	}
	return fmt.Sprint(v)
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strconv.Quote(s)
	}
	return out
}
