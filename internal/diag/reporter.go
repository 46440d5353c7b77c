package diag

// Reporter receives diagnostics from producers.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
