package generate

// Placeholder fills the slots of methods the service returned no docblock for.
const Placeholder = "/** Generated docblock */"

// Reconciliation is a bulk reply aligned to the requested methods.
type Reconciliation struct {
	Annotations []string // always Expected long; index i belongs to method i
	Expected    int
	Received    int
	Raw         string
}

// Mismatch reports whether the service returned a different number of segments.
func (r Reconciliation) Mismatch() bool {
	return r.Expected != r.Received
}

// Reconcile forces segments to exactly n items: short replies are padded with
// placeholder, long replies are truncated. It never fails.
func Reconcile(n int, segments []string, raw, placeholder string) Reconciliation {
	if n < 0 {
		n = 0
	}
	if placeholder == "" {
		placeholder = Placeholder
	}

	annotations := make([]string, n)
	copied := copy(annotations, segments)
	for i := copied; i < n; i++ {
		annotations[i] = placeholder
	}

	return Reconciliation{
		Annotations: annotations,
		Expected:    n,
		Received:    len(segments),
		Raw:         raw,
	}
}
