// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/Fantom-foundation/Prio/fibheap"
	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./fibheap/tool <command> <flags>

var (
	seedFlag = cli.Int64Flag{
		Name:  "seed",
		Usage: "seed for the random workload generator",
		Value: 0,
	}
	opsFlag = cli.IntFlag{
		Name:  "ops",
		Usage: "number of operations to run",
		Value: 100_000,
	}
	checkIntervalFlag = cli.IntFlag{
		Name:  "check-interval",
		Usage: "number of operations between invariant checks, 0 disables the periodic checks",
		Value: 10_000,
	}
)

func main() {
	app := &cli.App{
		Name:      "prio",
		Usage:     "Fibonacci heap demo and stress toolbox",
		Copyright: "(c) 2024 Fantom Foundation",
		Commands: []*cli.Command{
			&demoCmd,
			&stressCmd,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var demoCmd = cli.Command{
	Action: demo,
	Name:   "demo",
	Usage:  "runs two guided scenarios exercising the heap API",
}

func demo(context *cli.Context) error {
	out := context.App.Writer

	fmt.Fprintln(out, "--- priority task queue ---")
	tasks := fibheap.New[int, string]()
	tasks.Insert(3, "low priority task")
	tasks.Insert(1, "high priority task")
	tasks.Insert(2, "medium priority task")
	tasks.Insert(0, "critical task")

	for {
		e, ok := tasks.ExtractMin()
		if !ok {
			break
		}
		fmt.Fprintf(out, "priority %d: %s\n", e.Key, e.Value)
	}

	fmt.Fprintln(out, "--- shortest path relaxation ---")
	const numVertices = 5
	distances := fibheap.New[int, int]()
	handles := make([]fibheap.Handle[int, int], numVertices)
	for i := 0; i < numVertices; i++ {
		distance := 1000
		if i == 0 {
			distance = 0
		}
		handles[i] = distances.Insert(distance, i)
	}

	for _, relax := range []struct{ vertex, distance int }{{1, 10}, {2, 5}, {3, 15}} {
		if err := distances.DecreaseKey(handles[relax.vertex], relax.distance); err != nil {
			return fmt.Errorf("failed to relax vertex %d: %w", relax.vertex, err)
		}
		fmt.Fprintf(out, "updated vertex %d distance to %d\n", relax.vertex, relax.distance)
	}

	fmt.Fprintln(out, "visiting vertices in order of distance:")
	for {
		e, ok := distances.ExtractMin()
		if !ok {
			break
		}
		fmt.Fprintf(out, "vertex %d (distance: %d)\n", e.Value, e.Key)
	}
	return nil
}

var stressCmd = cli.Command{
	Action: stress,
	Name:   "stress",
	Usage:  "runs a randomized workload, validating invariants along the way",
	Flags: []cli.Flag{
		&seedFlag,
		&opsFlag,
		&checkIntervalFlag,
	},
}

func stress(context *cli.Context) error {
	out := context.App.Writer
	r := rand.New(rand.NewSource(context.Int64(seedFlag.Name)))
	numOps := context.Int(opsFlag.Name)
	checkInterval := context.Int(checkIntervalFlag.Name)

	h := fibheap.New[int64, int]()
	live := []fibheap.Handle[int64, int]{}
	pruneStale := func() {
		l := live[:0]
		for _, ref := range live {
			if ref.Valid() {
				l = append(l, ref)
			}
		}
		live = l
	}

	for i := 0; i < numOps; i++ {
		switch op := r.Intn(10); {
		case op <= 4 || len(live) == 0: // half the workload are inserts
			live = append(live, h.Insert(r.Int63n(1<<40), i))
		case op <= 6:
			h.ExtractMin()
			pruneStale()
		case op <= 8:
			ref := live[r.Intn(len(live))]
			if key, ok := ref.Key(); ok {
				if err := h.DecreaseKey(ref, key-r.Int63n(1<<20)); err != nil {
					return fmt.Errorf("decrease-key failed after %d operations: %w", i, err)
				}
			}
		default:
			idx := r.Intn(len(live))
			if err := h.Delete(live[idx]); err != nil {
				return fmt.Errorf("delete failed after %d operations: %w", i, err)
			}
			live = append(live[:idx], live[idx+1:]...)
		}

		if checkInterval > 0 && (i+1)%checkInterval == 0 {
			if err := h.Check(); err != nil {
				return fmt.Errorf("invariant violation after %d operations: %w", i+1, err)
			}
			fmt.Fprintf(out, "%10d ops, %s\n", i+1, h.GetStatistics())
		}
	}

	if err := h.Check(); err != nil {
		return fmt.Errorf("invariant violation at the end of the workload: %w", err)
	}
	fmt.Fprintf(out, "done: %s\n", h.GetStatistics())

	// drain and verify ordering
	last, haveLast := int64(0), false
	for {
		e, ok := h.ExtractMin()
		if !ok {
			break
		}
		if haveLast && e.Key < last {
			return fmt.Errorf("extraction sequence not sorted: %d after %d", e.Key, last)
		}
		last, haveLast = e.Key, true
	}
	fmt.Fprintln(out, "extraction sequence verified")
	return nil
}
