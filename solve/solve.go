// Package solve wires every other package into the single entry point a
// caller actually uses: build the index and pipeline, run an initial
// construction pass, then refine via the evolution loop, and shape the
// result into the external Solution output.
//
// Grounded on github.com/katalvlaran/lvlath's tsp/solve.go two-stage
// dispatch (pick a construction strategy, then an improvement strategy),
// generalized from a single TSP tour to a multi-route VRP solution plus a
// generational metaheuristic on top of construction.
package solve

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/routeforge/vrpcore/config"
	"github.com/routeforge/vrpcore/costmodel"
	"github.com/routeforge/vrpcore/evolution"
	"github.com/routeforge/vrpcore/hyperheuristic"
	"github.com/routeforge/vrpcore/insertion"
	"github.com/routeforge/vrpcore/jobindex"
	"github.com/routeforge/vrpcore/pipeline"
	"github.com/routeforge/vrpcore/population"
	"github.com/routeforge/vrpcore/recreate"
	"github.com/routeforge/vrpcore/ruin"
	"github.com/routeforge/vrpcore/solution"
	"github.com/routeforge/vrpcore/telemetry"
	"github.com/routeforge/vrpcore/vrpmodel"
	"github.com/routeforge/vrpcore/vrprand"
)

// Stop names a route's one activity as exposed in the external result,
// in tour order.
type Stop struct {
	JobID    int64
	Location vrpmodel.Location
	Arrival  vrpmodel.Timestamp
	Departure vrpmodel.Timestamp
}

// RouteResult is one actor's finished route.
type RouteResult struct {
	ActorID int64
	Stops   []Stop
}

// UnassignedResult names a job that could not be placed and why.
type UnassignedResult struct {
	JobID int64
	Code  int
}

// Statistics summarizes the solution's aggregate shape.
type Statistics struct {
	TotalRoutes     int
	TotalJobsPlaced int
	TotalUnassigned int
	Generations     int
	Fitness         []float64
	Elapsed         time.Duration
}

// Solution is the external result shape: tours with actor id and ordered
// stops, the unassigned list with reasons, and aggregate statistics.
type Solution struct {
	RunID      string
	Routes     []RouteResult
	Unassigned []UnassignedResult
	Statistics Statistics
}

// Solve builds a Pipeline over problem's configured features, runs a
// greedy construction pass over every job, then refines the result via
// the evolution loop until cfg's Termination fires.
func Solve(ctx context.Context, problem *vrpmodel.Problem, tc costmodel.TransportCost, features []pipeline.Feature, cfg config.Config) (Solution, error) {
	started := time.Now()
	runID := uuid.New().String()

	p, err := pipeline.Build(features, problem.ObjectiveNames, problem.LocalObjective)
	if err != nil {
		return Solution{}, fmt.Errorf("solve: build pipeline: %w", err)
	}

	index := jobindex.Build(problem, tc)
	master := vrprand.New(cfg.RandomSeed)

	sol := solution.NewSolutionContext(problem.Fleet)
	ic := &solution.InsertionContext{Problem: problem, Solution: sol, Random: master}

	newRouteHook := func(s *solution.SolutionContext) *solution.RouteContext {
		available := s.Registry.Available()
		if len(available) == 0 {
			return nil
		}
		return solution.NewRouteContext(available[0])
	}
	eval := insertion.NewEvaluator(p, newRouteHook)

	constructionEngine := recreate.New(eval, recreate.SequentialJobSelector{}, insertion.BestResultSelector{})
	constructionEngine.Run(ic, append([]vrpmodel.Job(nil), problem.Jobs...))

	table := buildMutationTable(eval, index, problem, cfg)
	selector := buildSelector(cfg)
	pop := buildPopulation(cfg)

	term := evolution.Composite{Children: buildTermination(cfg)}

	loop := &evolution.Loop{
		Pipeline:    p,
		Population:  pop,
		Termination: term,
		Quota:       evolution.Quota{MaxOffspringPerGeneration: cfg.ParentsPerGen},
		Table:       table,
		Selector:    selector,
		Config:      evolution.Config{ParentsPerGeneration: cfg.ParentsPerGen, RandomSeed: cfg.RandomSeed, RunID: runID},
	}
	loop.Hooks = buildHooks(ctx, cfg, runID)

	best, err := loop.Run(ctx, ic)
	if err != nil && best == nil {
		return Solution{}, fmt.Errorf("solve: evolution loop: %w", err)
	}
	if best == nil {
		best = sol
	}

	result := shape(best, p, started)
	result.RunID = runID
	return result, nil
}

func buildMutationTable(eval *insertion.Evaluator, index *jobindex.Index, problem *vrpmodel.Problem, cfg config.Config) evolution.MutationTable {
	var profile vrpmodel.Profile
	for prof := range index.Profiles {
		profile = prof
		break
	}

	limits := ruin.RemovalLimits{MaxJobsToRemove: cfg.MaxJobsPerRuin, MaxRoutesAffected: cfg.MaxRoutesPerRuin}
	return evolution.MutationTable{
		RuinLimits: limits,
		Ruins: []ruin.Operator{
			ruin.RandomJobRemoval{},
			ruin.NeighbourJobRemoval{Index: index, Profile: profile},
			ruin.RouteRandomRemoval{},
		},
		Recreates: []*recreate.Engine{
			recreate.NewCheapestRecreate(eval),
			recreate.NewNearestNeighbourRecreate(eval, index, profile),
			recreate.NewRegretKRecreate(eval, index, profile),
		},
	}
}

func buildSelector(cfg config.Config) hyperheuristic.Selector {
	moves := []hyperheuristic.Move{
		{RuinIndex: 0, MutationIndex: 0},
		{RuinIndex: 0, MutationIndex: 1},
		{RuinIndex: 1, MutationIndex: 0},
		{RuinIndex: 1, MutationIndex: 2},
		{RuinIndex: 2, MutationIndex: 0},
	}
	if cfg.HyperHeuristic.Variant == "dynamic" {
		epsilon := cfg.HyperHeuristic.Epsilon
		if epsilon <= 0 {
			epsilon = 0.1
		}
		alpha := cfg.HyperHeuristic.Alpha
		if alpha <= 0 {
			alpha = 0.1
		}
		return hyperheuristic.NewDynamicSelective(moves, epsilon, alpha)
	}
	table := hyperheuristic.NewStaticSelective()
	for _, m := range moves {
		table.Add(m, 1, nil)
	}
	return table
}

func buildPopulation(cfg config.Config) population.Population {
	if cfg.Population.Elitist {
		return population.NewElitistPopulation(cfg.Population.EliteSize, cfg.Population.DiversitySize, cfg.Population.ExploitAfterGens)
	}
	return population.NewGreedyPopulation(cfg.Population.MaxSize)
}

func buildTermination(cfg config.Config) []evolution.Termination {
	var out []evolution.Termination
	if cfg.Termination.MaxGenerations > 0 {
		out = append(out, evolution.MaxGenerations{Limit: cfg.Termination.MaxGenerations})
	}
	if cfg.Termination.MaxWallTimeSeconds > 0 {
		out = append(out, evolution.MaxWallTime{Limit: time.Duration(cfg.Termination.MaxWallTimeSeconds * float64(time.Second))})
	}
	if cfg.Termination.CoVThreshold > 0 {
		out = append(out, &evolution.CoefficientOfVariation{
			Threshold:      cfg.Termination.CoVThreshold,
			MinGenerations: cfg.Termination.CoVMinGenerations,
		})
	}
	if len(out) == 0 {
		out = append(out, evolution.MaxGenerations{Limit: 100})
	}
	return out
}

// buildHooks assembles the GenerationHooks cfg's TelemetryMode calls for:
// ModeBasic logs only, ModeOnlyProgress additionally serves the live
// websocket dashboard (telemetry.Logger's doc comment: "runs the
// websocket dashboard but skips Prometheus"), ModeFull runs all three.
// The dashboard's HTTP server is started in the background and torn down
// when ctx is cancelled.
func buildHooks(ctx context.Context, cfg config.Config, runID string) []evolution.GenerationHook {
	mode := cfg.TelemetryModeValue()
	if mode == telemetry.ModeNone {
		return nil
	}
	var hooks []evolution.GenerationHook
	logger := telemetry.NewLogger().WithField("run_id", runID)
	hooks = append(hooks, telemetry.GenerationHook{Logger: logger})
	if mode == telemetry.ModeOnlyProgress || mode == telemetry.ModeFull {
		dash := telemetry.NewDashboard()
		addr := cfg.DashboardAddr
		if addr == "" {
			addr = ":8098"
		}
		go func() { _ = dash.Serve(ctx, addr) }()
		hooks = append(hooks, telemetry.DashboardHook{Dashboard: dash})
	}
	if mode == telemetry.ModeFull {
		hooks = append(hooks, telemetry.MetricsHook{Metrics: telemetry.NewMetrics()})
	}
	return hooks
}

func shape(s *solution.SolutionContext, p *pipeline.Pipeline, started time.Time) Solution {
	out := Solution{}
	placed := 0
	for _, route := range s.Routes {
		rr := RouteResult{ActorID: route.Actor.ID}
		for _, act := range route.Tour.Activities() {
			if act.IsTerminal() {
				continue
			}
			rr.Stops = append(rr.Stops, Stop{
				JobID:     vrpmodel.AsJob(act.Job).ID(),
				Location:  act.Location,
				Arrival:   act.Schedule.Arrival,
				Departure: act.Schedule.Departure,
			})
			placed++
		}
		out.Routes = append(out.Routes, rr)
	}
	for jobID, reason := range s.Unassigned {
		out.Unassigned = append(out.Unassigned, UnassignedResult{JobID: jobID, Code: reason.Code})
	}
	out.Statistics = Statistics{
		TotalRoutes:     len(out.Routes),
		TotalJobsPlaced: placed,
		TotalUnassigned: len(out.Unassigned),
		Fitness:         p.Fitness(s),
		Elapsed:         time.Since(started),
	}
	return out
}
