package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/s0up4200/snapctl/config"
	"github.com/s0up4200/snapctl/snapapi"
)

// errPollingExhausted is returned when a job is still running after the
// configured number of polls
var errPollingExhausted = errors.New("job did not finish within the polling limit")

// jobPoller owns the wait loop for batch and async jobs. The library only
// fetches single snapshots.
type jobPoller struct {
	jobs   snapapi.JobRunner
	policy config.PollingConfig
	logger zerolog.Logger
}

func newJobPoller(jobs snapapi.JobRunner, policy config.PollingConfig, logger zerolog.Logger) *jobPoller {
	return &jobPoller{jobs: jobs, policy: policy, logger: logger}
}

// waitBatch polls until the batch is terminal or the attempts run out. The
// last snapshot is returned with errPollingExhausted in the latter case.
// onPoll, if set, sees every snapshot.
func (p *jobPoller) waitBatch(ctx context.Context, jobID string, onPoll func(*snapapi.BatchResult)) (*snapapi.BatchResult, error) {
	var monitor snapapi.ProgressMonitor

	var last *snapapi.BatchResult
	err := p.loop(ctx, func(ctx context.Context) (bool, error) {
		r, err := p.jobs.BatchStatus(ctx, jobID)
		if err != nil {
			return false, err
		}
		last = r

		if err := monitor.Observe(r); err != nil {
			p.logger.Warn().Err(err).Str("job_id", jobID).Msg("Inconsistent batch progress reported")
		}
		if err := r.Validate(); err != nil {
			p.logger.Warn().Err(err).Msg("Inconsistent batch counters reported")
		}

		if onPoll != nil {
			onPoll(r)
		}
		return r.Done(), nil
	})
	return last, err
}

// waitAsync polls until the async job is terminal or the attempts run out.
func (p *jobPoller) waitAsync(ctx context.Context, jobID string) (*snapapi.AsyncJob, error) {
	var last *snapapi.AsyncJob
	err := p.loop(ctx, func(ctx context.Context) (bool, error) {
		job, err := p.jobs.AsyncStatus(ctx, jobID)
		if err != nil {
			return false, err
		}
		last = job

		p.logger.Debug().Str("job_id", jobID).Str("status", string(job.Status)).Msg("Async job status")
		return job.Done(), nil
	})
	return last, err
}

func (p *jobPoller) loop(ctx context.Context, poll func(context.Context) (bool, error)) error {
	ticker := time.NewTicker(p.policy.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		done, err := poll(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if attempt >= p.policy.MaxAttempts {
			return fmt.Errorf("%w (%d polls every %s)", errPollingExhausted, attempt, p.policy.Interval)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
