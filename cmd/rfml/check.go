package main

import (
	"fmt"
	"runtime"

	"github.com/maruel/subcommands"
	"golang.org/x/sync/errgroup"
)

var cmdCheck = &subcommands.Command{
	UsageLine: "check <file>...",
	ShortDesc: "Report whether files follow the RFML convention.",
	LongDesc:  "Checks every file concurrently. Exits non-zero if any file is not a convention file.",
	CommandRun: func() subcommands.CommandRun {
		r := &checkRun{}
		r.init()
		r.Flags.IntVar(&r.jobs, "j", runtime.NumCPU(), "Number of files checked at once.")
		return r
	},
}

type checkRun struct {
	baseCommandRun
	jobs int
}

func (r *checkRun) Run(_ subcommands.Application, args []string, _ subcommands.Env) int {
	if len(args) == 0 {
		return r.done(r.usage("at least one file", args))
	}
	s := r.start()

	ok := make([]bool, len(args))
	var g errgroup.Group
	g.SetLimit(max(r.jobs, 1))
	for i, path := range args {
		g.Go(func() error {
			ok[i] = s.IsConventionFile(path)
			return nil
		})
	}
	g.Wait()

	var bad int
	for i, path := range args {
		status := "ok"
		if !ok[i] {
			status = "not a convention file"
			bad++
		}
		fmt.Fprintf(r.stdout, "%s: %s\n", path, status)
	}
	if bad > 0 {
		return r.done(fmt.Errorf("%d of %d files failed", bad, len(args)))
	}
	return r.done(nil)
}
