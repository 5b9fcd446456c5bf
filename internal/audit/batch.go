package audit

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/contextlint/contextlint/internal/types"
	"github.com/contextlint/contextlint/internal/urlutil"
)

// BatchOptions controls a batch run over many seed URLs.
type BatchOptions struct {
	// Single audits each URL as one page instead of a site.
	Single bool
	// MaxPages and Concurrency are passed through to each site audit.
	MaxPages    int
	Concurrency int
	// SeedConcurrency bounds how many seeds are audited at once.
	SeedConcurrency int
	Progress        ProgressFunc
}

// RunBatch audits every seed URL and aggregates the outcomes. A failed
// seed is recorded and skipped; the batch itself only fails on
// cancellation.
func (a *Auditor) RunBatch(ctx context.Context, urls []string, opts BatchOptions) (*types.BatchAuditReport, error) {
	if opts.SeedConcurrency < 1 {
		opts.SeedConcurrency = 3
	}

	report := &types.BatchAuditReport{}

	single := make([]*types.AuditReport, len(urls))
	site := make([]*types.SiteAuditReport, len(urls))
	failures := make([]error, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.SeedConcurrency)
	for i, raw := range urls {
		i, seed := i, urlutil.EnsureScheme(raw)
		g.Go(func() error {
			notify(opts.Progress, fmt.Sprintf("Auditing %s...", seed))
			if opts.Single {
				r, err := a.AuditURL(gctx, seed)
				if err != nil {
					if gctx.Err() != nil {
						return err
					}
					failures[i] = err
					return nil
				}
				single[i] = r
				return nil
			}
			r, err := a.AuditSite(gctx, seed, opts.MaxPages, opts.Concurrency, nil)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				failures[i] = err
				return nil
			}
			site[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total float64
	for i := range urls {
		switch {
		case single[i] != nil:
			report.Reports = append(report.Reports, *single[i])
			report.URLsAudited++
			total += single[i].OverallScore
		case site[i] != nil:
			report.SiteReports = append(report.SiteReports, *site[i])
			report.URLsAudited++
			total += site[i].OverallScore
		default:
			report.URLsFailed++
			if failures[i] != nil {
				notify(opts.Progress, fmt.Sprintf("Failed: %s (%v)", urls[i], failures[i]))
			}
		}
	}
	if report.URLsAudited > 0 {
		report.AverageScore = round1(total / float64(report.URLsAudited))
	}

	return report, nil
}
