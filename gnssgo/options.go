package gnssgo

// SolOpt controls solution-record formatting/output thresholds: the
// subset an in-process consumer of Sol cares about (no file-output
// formatting here; that belongs to the out-of-scope stream-I/O
// collaborator).
type SolOpt struct {
	MaxSolStd float64 // reject (for reporting purposes) if sqrt(trace(Qr)) exceeds this, 0: no limit
}

// DefaultSolOpt returns conservative defaults (no reporting limit).
func DefaultSolOpt() SolOpt {
	return SolOpt{MaxSolStd: 0}
}

// DefaultSnrMask returns an all-pass mask (disabled).
func DefaultSnrMask() SnrMask {
	return SnrMask{Enable: false}
}
