package main

import (
	"github.com/maruel/subcommands"

	"github.com/robert-malhotra/go-rfml/internal/config"
	"github.com/robert-malhotra/go-rfml/rfml"
)

var cmdConfig = &subcommands.Command{
	UsageLine: "config [-c grid.toml] <out>",
	ShortDesc: "Write a solver configuration file from a grid description.",
	CommandRun: func() subcommands.CommandRun {
		r := &configRun{}
		r.init()
		r.Flags.StringVar(&r.configPath, "c", "", "Grid TOML file. Defaults apply when empty.")
		return r
	},
}

type configRun struct {
	baseCommandRun
	configPath string
}

func (r *configRun) Run(_ subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 1 {
		return r.done(r.usage("one output file", args))
	}
	s := r.start()
	grid := config.DefaultGrid()
	if r.configPath != "" {
		var err error
		if grid, err = config.LoadGrid(r.configPath); err != nil {
			return r.done(err)
		}
	}
	endian, err := rfml.ParseEndian(grid.Endian)
	if err != nil {
		return r.done(err)
	}
	return r.done(s.WriteConfig(args[0], rfml.GridConfig{
		SimulationName: grid.SimulationName,
		X:              grid.X.Faces(),
		Y:              grid.Y.Faces(),
		Z:              grid.Z.Faces(),
		Cylindrical:    grid.Cylindrical,
		Periodicity:    grid.Periodicity,
	}, endian))
}

var cmdSnapshot = &subcommands.Command{
	UsageLine: "snapshot [-c snapshot.toml] <out>",
	ShortDesc: "Write a zero-filled solver state file.",
	CommandRun: func() subcommands.CommandRun {
		r := &snapshotRun{}
		r.init()
		r.Flags.StringVar(&r.configPath, "c", "", "Snapshot TOML file. Defaults apply when empty.")
		return r
	},
}

type snapshotRun struct {
	baseCommandRun
	configPath string
}

func (r *snapshotRun) Run(_ subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) != 1 {
		return r.done(r.usage("one output file", args))
	}
	s := r.start()
	snap := config.DefaultSnapshot()
	if r.configPath != "" {
		var err error
		if snap, err = config.LoadSnapshot(r.configPath); err != nil {
			return r.done(err)
		}
	}
	endian, err := rfml.ParseEndian(snap.Endian)
	if err != nil {
		return r.done(err)
	}
	fields := make([]rfml.Field, len(snap.Fields))
	for i, name := range snap.Fields {
		fields[i] = rfml.Field{Name: name, Array: rfml.Zeros(snap.Shape...)}
	}
	return r.done(s.WriteSnapshot(args[0], fields, snap.T0, snap.Dt, endian))
}
