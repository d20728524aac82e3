package main

import (
	"fmt"

	"github.com/maruel/subcommands"

	"github.com/robert-malhotra/go-rfml/hdf5"
	"github.com/robert-malhotra/go-rfml/internal/observability"
	"github.com/robert-malhotra/go-rfml/rfml"
)

var cmdRemove = &subcommands.Command{
	UsageLine: "rm <file> <name>",
	ShortDesc: "Remove a field from /data and update the bookkeeping.",
	CommandRun: func() subcommands.CommandRun {
		r := &removeRun{}
		r.init()
		return r
	},
}

type removeRun struct {
	baseCommandRun
}

func (r *removeRun) Run(_ subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 2 {
		return r.done(r.usage("file and field name", args))
	}
	s := r.start()
	return r.done(s.RemoveDataset(args[0], rfml.DataGroup, args[1]))
}

var cmdRepack = &subcommands.Command{
	UsageLine: "repack <file>",
	ShortDesc: "Compact a file and report the bytes saved.",
	CommandRun: func() subcommands.CommandRun {
		r := &repackRun{}
		r.init()
		return r
	},
}

type repackRun struct {
	baseCommandRun
}

func (r *repackRun) Run(_ subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 1 {
		return r.done(r.usage("one file", args))
	}
	r.start()
	rep, err := hdf5.RepackFile(args[0])
	if err != nil {
		return r.done(err)
	}
	observability.RecordReclaimed(rep.Reclaimed())
	fmt.Fprintf(r.stdout, "%s: %d -> %d bytes\n", args[0], rep.Before, rep.After)
	return r.done(nil)
}
