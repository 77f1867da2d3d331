package domain

import "fmt"

// Report is the outcome of a single release run.
type Report struct {
	Version     Version
	Tags        []string // most recent registry tags shown to the operator
	ImageRef    string
	ArchivePath string
	ReleaseURL  string
	Stages      []Stage

	CommitSkipped bool // nothing was staged, e.g. a re-run after a partial publish

	// Dry run only.
	Preview string   // unified diff of the chart descriptor
	Plan    []string // commands a real run would execute, in order
}

// NewReport returns a report positioned at StageStart.
func NewReport() *Report {
	return &Report{Stages: []Stage{StageStart}}
}

// Current returns the last stage reached.
func (r *Report) Current() Stage {
	return r.Stages[len(r.Stages)-1]
}

// Advance moves the report to s. Transitions only go forward and never leave a
// terminal stage.
func (r *Report) Advance(s Stage) error {
	cur := r.Current()
	if cur.Terminal() {
		return fmt.Errorf("cannot move from terminal stage %s to %s", cur, s)
	}
	if s <= cur {
		return fmt.Errorf("cannot move backwards from %s to %s", cur, s)
	}
	r.Stages = append(r.Stages, s)
	return nil
}

// Fail moves the report to StageFailed from whatever stage it is in.
func (r *Report) Fail() {
	if r.Current().Terminal() {
		return
	}
	r.Stages = append(r.Stages, StageFailed)
}

// Reached reports whether s was reached during the run.
func (r *Report) Reached(s Stage) bool {
	for _, st := range r.Stages {
		if st == s {
			return true
		}
	}
	return false
}
