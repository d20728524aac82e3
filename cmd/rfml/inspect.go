package main

import (
	"fmt"
	"strings"

	"github.com/maruel/subcommands"

	"github.com/robert-malhotra/go-rfml/hdf5"
)

var cmdInspect = &subcommands.Command{
	UsageLine: "inspect <file>",
	ShortDesc: "Print every group, dataset and attribute in a file.",
	CommandRun: func() subcommands.CommandRun {
		r := &inspectRun{}
		r.init()
		return r
	},
}

type inspectRun struct {
	baseCommandRun
}

func (r *inspectRun) Run(_ subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 1 {
		return r.done(r.usage("one file", args))
	}
	r.start()
	f, err := hdf5.Open(args[0])
	if err != nil {
		return r.done(err)
	}
	defer f.Close()

	layout := "current"
	if f.Legacy() {
		layout = "legacy"
	}
	fmt.Fprintf(r.stdout, "superblock version %d, %s layout, %d bytes\n", f.Version(), layout, f.Size())
	return r.done(hdf5.Walk(f.Root(), func(path string, obj hdf5.Object, err error) error {
		indent := strings.Repeat("  ", len(hdf5.SplitPath(path)))
		if err != nil {
			fmt.Fprintf(r.stdout, "%s%s: ERROR %v\n", indent, path, err)
			return nil
		}
		switch o := obj.(type) {
		case *hdf5.Group:
			fmt.Fprintf(r.stdout, "%sgroup %s\n", indent, path)
		case *hdf5.Dataset:
			t, terr := o.Type()
			typ := t.String()
			if terr != nil {
				typ = "unsupported"
			}
			fmt.Fprintf(r.stdout, "%sdataset %s %s %v\n", indent, path, typ, o.Shape())
		}
		r.printAttrs(indent+"  ", obj)
		return nil
	}))
}

func (r *inspectRun) printAttrs(indent string, obj hdf5.Object) {
	attrs, err := obj.Attrs()
	if err != nil {
		fmt.Fprintf(r.stdout, "%s@ ERROR %v\n", indent, err)
		return
	}
	for _, a := range attrs {
		v, err := a.Values()
		if err != nil {
			fmt.Fprintf(r.stdout, "%s@%s: ERROR %v\n", indent, a.Name(), err)
			continue
		}
		t, _ := a.Type()
		fmt.Fprintf(r.stdout, "%s@%s %s = %s\n", indent, a.Name(), t, formatValues(v))
	}
}
