package evolution

// Config bundles every knob the generational loop needs that isn't
// already captured by its Population/Termination/Quota collaborators:
// how many parents to mutate per generation and how many independent
// random streams to derive for them.
type Config struct {
	ParentsPerGeneration int
	RandomSeed           int64
	// RunID uniquely identifies one Solve invocation, threaded through to
	// every telemetry hook so logs/metrics/dashboard snapshots from
	// concurrent runs never get interleaved under the same identity.
	RunID string
}
