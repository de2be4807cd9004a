// Package features provides the concrete Feature implementations the
// pipeline composes: capacity, transport/time, travel limit, shared
// resource, area, total value, work balance, locked jobs, minimise
// unassigned, minimise tours.
//
// Each file here is grounded on a specific teacher package, cited in its
// doc comment and in DESIGN.md; none of them talk to the pipeline
// directly except through the pipeline.Constraint/Objective/State
// interfaces, matching spec.md §9's "small object-safe interface per
// role" design note.
package features

// ViolationCode is a small integer labelling which constraint rejected a
// move (spec.md §6 "Diagnostic codes"). The core does not interpret these
// beyond surfacing them in SolutionContext.Unassigned; callers may extend
// this list in their own deployments by defining codes >= CodeUserBase.
type ViolationCode int

const (
	CodeCapacity ViolationCode = iota + 1
	CodeTimeWindow
	CodeTravelLimit
	CodeSharedResource
	CodeArea
	CodeLocked
	CodeSkills

	// CodeUserBase is the first code value reserved for deployment-
	// specific constraints; core codes never reach this value.
	CodeUserBase = 1000
)
