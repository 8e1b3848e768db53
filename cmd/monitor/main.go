package main

import (
	"context"

	"github.com/davidleitw/disqus/internal/config"
	"github.com/davidleitw/disqus/internal/db"
	"github.com/davidleitw/disqus/internal/disqus"
	"github.com/davidleitw/disqus/internal/importer"
	"github.com/davidleitw/disqus/internal/monitor"
	"github.com/davidleitw/disqus/internal/rule"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	configFile = flag.String("config", "", "path to a disqus.yaml settings file")
	schedule   = flag.String("schedule", "", "cron spec for the sync, overrides the sync_schedule setting")
	now        = flag.Bool("now", true, "sync once at startup before waiting for the schedule")
	verbosity  = flag.IntP("verbosity", "v", 1, "verbosity level; 0=minimal output, 1=normal output, 2=verbose output, 3=very verbose output")
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetReportCaller(true)
}

// Keeps the local mirror in step with the forum on a schedule.
func main() {
	flag.Parse()
	config.SetVerbosity(*verbosity)

	settings, err := config.Load(*configFile)
	if err != nil {
		logrus.WithError(err).Fatal("config.Load failed")
	}
	if err := settings.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid settings")
	}

	// One bad post must not stop a periodic sync.
	runRule, err := rule.NewRunRule(append(settings.RuleOptions(), rule.OnError(rule.Continue))...)
	if err != nil {
		logrus.WithError(err).Fatal("rule.NewRunRule failed")
	}

	store := db.NewMirrorDb(settings.DbPath)
	if err := store.Open(); err != nil {
		logrus.WithError(err).Fatal("store.Open failed")
	}
	defer store.Close()

	imp := importer.NewImporter(disqus.New(settings.ClientOptions()...), store, runRule)

	cronSpec := settings.SyncSchedule
	if *schedule != "" {
		cronSpec = *schedule
	}

	m, err := monitor.NewMonitor(cronSpec, func(ctx context.Context) error {
		report, err := imp.Run(ctx)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"threads": report.Threads,
			"posts":   report.Posts,
			"failed":  report.Failed,
		}).Info("Mirror updated")
		return nil
	}, monitor.RunAtStartup(*now))
	if err != nil {
		logrus.WithError(err).Error("monitor.NewMonitor failed")
		return
	}

	if err := m.Run(); err != nil {
		logrus.WithError(err).Error("monitor.Run failed")
	}
}
