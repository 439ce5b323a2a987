package diagfmt

// PrettyOpts controls human-readable diagnostic rendering.
type PrettyOpts struct {
	// Color enables ANSI styling of severities and carets.
	Color bool
	// Context is the number of source lines shown before the primary line.
	Context int
}
