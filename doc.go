// Package vrpcore is the root of a vehicle-routing-problem metaheuristic
// engine: an insertion / ruin-and-recreate / local-search solver built
// around a pluggable feature pipeline (constraints, objectives, cached
// state) and a multi-island evolution loop.
//
// Layout mirrors responsibility, leaves first:
//
//	vrprand/        deterministic per-stream RNG derivation
//	vrpmodel/       immutable problem domain: fleet, jobs, activities
//	jobindex/       precomputed per-profile neighbour/rank index
//	costmodel/      transport & activity cost functions
//	solution/       mutable route/solution working state
//	pipeline/       Feature composition: constraint + objective + state
//	features/       concrete Features (capacity, time, travel limit, ...)
//	insertion/      cheapest-feasible-insertion evaluator
//	recreate/       constructive heuristics
//	ruin/           destructive heuristics
//	localsearch/    small neighborhood moves
//	hyperheuristic/ operator selection (static-weighted, dynamic Q-learning)
//	population/     elite solution storage, phase management
//	evolution/      the top-level generational loop
//	telemetry/      logging, optional live dashboard, optional metrics
//	config/         configuration surface (viper/yaml)
//	solve/          Solve(problem, config) entry point
//
// File-format parsers, CLI argument parsing, WASM bindings, checker tools
// and Problem pre-processors (vicinity clustering, DBSCAN job grouping)
// are out of scope: they are external collaborators that feed a Problem
// into this package via typed interfaces only.
package vrpcore
