package scheduler

import (
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	err   error
	calls atomic.Int32
}

func (j *countingJob) Run() error {
	j.calls.Add(1)
	return j.err
}

func (j *countingJob) Name() string { return j.name }

type panickingJob struct{}

func (panickingJob) Run() error   { panic("boom") }
func (panickingJob) Name() string { return "panicking" }

func TestAddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("0 */30 * * * *", &countingJob{name: "cleanup"}))
	require.NoError(t, s.AddJob("@every 1h", &countingJob{name: "warmup"}))

	jobs := s.Jobs()
	sort.Strings(jobs)
	assert.Equal(t, []string{"cleanup", "warmup"}, jobs)
}

func TestAddJob_Errors(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("every day", &countingJob{name: "bad"})
	assert.ErrorContains(t, err, "invalid schedule")

	// five-field specs lack the seconds column
	err = s.AddJob("0 6 * * *", &countingJob{name: "five"})
	assert.Error(t, err)

	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "dup"}))
	err = s.AddJob("@daily", &countingJob{name: "dup"})
	assert.ErrorContains(t, err, "already registered")
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{name: "now"}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.calls.Load())

	failing := &countingJob{name: "failing", err: errors.New("nope")}
	assert.EqualError(t, s.RunNow(failing), "nope")
}

func TestStartRunsScheduledJobs(t *testing.T) {
	s := New(zerolog.Nop())

	job := &countingJob{name: "tick", err: errors.New("logged, not fatal")}
	require.NoError(t, s.AddJob("@every 1s", job))
	require.NoError(t, s.AddJob("@every 1s", panickingJob{}))

	s.Start()
	assert.False(t, s.NextRun("tick").IsZero())

	assert.Eventually(t, func() bool {
		return job.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)

	s.Stop()
}

func TestNextRun_Unknown(t *testing.T) {
	s := New(zerolog.Nop())
	assert.True(t, s.NextRun("missing").IsZero())
}
