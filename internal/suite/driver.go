package suite

import (
	"context"
	"strings"

	"github.com/AndreyAkinshin/conformrun/internal/output"
)

// Result is the outcome of a whole run across suites.
type Result struct {
	Reports []*Report
	Total   GrandTotal
}

// Driver runs suites one after another and folds each report into the
// grand total as soon as the suite completes.
type Driver struct {
	runner *Runner
	out    *output.Writer

	// OnReport, if set, is called after each suite is folded.
	OnReport func(*Report)
}

// NewDriver creates a Driver that prints progress to out.
func NewDriver(r *Runner, out *output.Writer) *Driver {
	return &Driver{runner: r, out: out}
}

// Run executes suites sequentially. When ctx is cancelled it stops after the
// current test, folds what finished, and returns the partial result together
// with ctx.Err().
func (d *Driver) Run(ctx context.Context, suites []Suite) (*Result, error) {
	names := make([]string, len(suites))
	for i, s := range suites {
		names[i] = s.Name
	}
	d.out.Info("Running %d suites: %s", len(suites), strings.Join(names, ", "))

	res := &Result{}
	for _, s := range suites {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		report := d.runner.RunSuite(ctx, s)
		res.Reports = append(res.Reports, report)
		res.Total.Fold(report)
		WriteReport(d.out, report)
		if d.OnReport != nil {
			d.OnReport(report)
		}
		if report.Partial {
			return res, ctx.Err()
		}
	}

	WriteGrandTotal(d.out, res.Total)
	return res, nil
}
