package monitor

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one sync run. The context is cancelled when the monitor shuts down.
type Job func(ctx context.Context) error

type Monitor interface {
	Run() error
}

type MonitorOption func(*monitor)

// RunAtStartup runs the job once right away instead of waiting for the
// first tick.
func RunAtStartup(run bool) MonitorOption {
	return func(m *monitor) {
		m.runAtStartup = run
	}
}

type monitor struct {
	cron *cron.Cron
	job  Job

	runAtStartup bool
	running      sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

var _ Monitor = &monitor{}

// cronLogger routes cron's own messages through logrus.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logrus.WithFields(fields(keysAndValues)).Debug(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logrus.WithError(err).WithFields(fields(keysAndValues)).Error(msg)
}

func fields(keysAndValues []any) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			f[key] = keysAndValues[i+1]
		}
	}
	return f
}

// NewMonitor schedules job with a standard five-field cron spec or a
// descriptor such as "@hourly". Runs never overlap: a tick that fires while
// the job is still going is skipped.
func NewMonitor(schedule string, job Job, opts ...MonitorOption) (Monitor, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &monitor{
		job:    job,
		ctx:    ctx,
		cancel: cancel,
		cron: cron.New(
			cron.WithLogger(cronLogger{}),
			cron.WithChain(cron.Recover(cronLogger{})),
		),
	}
	for _, opt := range opts {
		opt(m)
	}

	if _, err := m.cron.AddFunc(schedule, m.runJob); err != nil {
		logrus.WithError(err).WithField("schedule", schedule).Error("cron.AddFunc failed")
		cancel()
		return nil, err
	}
	return m, nil
}

func (m *monitor) runJob() {
	if !m.running.TryLock() {
		logrus.Warn("Previous sync still running, skipping")
		return
	}
	defer m.running.Unlock()

	logrus.Info("Sync started")
	if err := m.job(m.ctx); err != nil {
		logrus.WithError(err).Error("Sync failed")
		return
	}
	logrus.Info("Sync finished")
}

// Run blocks until SIGINT or SIGTERM, then waits for a running job to stop.
func (m *monitor) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	m.serve(stop)
	return nil
}

func (m *monitor) serve(stop <-chan os.Signal) {
	m.cron.Start()
	if m.runAtStartup {
		go m.runJob()
	}

	<-stop

	logrus.Info("Shutting down monitor ...")
	m.cancel()
	<-m.cron.Stop().Done()
}
