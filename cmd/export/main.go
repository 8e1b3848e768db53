package main

import (
	"context"
	"fmt"
	"os"

	"github.com/davidleitw/disqus/internal/checkpoint"
	"github.com/davidleitw/disqus/internal/config"
	"github.com/davidleitw/disqus/internal/craw"
	"github.com/davidleitw/disqus/internal/db"
	"github.com/davidleitw/disqus/internal/disqus"
	"github.com/davidleitw/disqus/internal/exporter"
	"github.com/davidleitw/disqus/internal/rule"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	configFile = flag.String("config", "", "path to a disqus.yaml settings file")
	dryRun     = flag.BoolP("dry-run", "d", false, "do not export any comments, only list what would be exported")
	stateFile  = flag.StringP("state-file", "s", "", "save the id of the last exported comment to this file and resume from it")
	verbosity  = flag.IntP("verbosity", "v", 1, "verbosity level; 0=minimal output, 1=normal output, 2=verbose output, 3=very verbose output")
	onError    = flag.String("on-error", string(rule.Abort), `what to do when one comment fails: "abort" or "continue"`)
	fetchTitle = flag.Bool("fetch-titles", false, "read the title of pages stored without one from the site itself")
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetReportCaller(true)
}

// A state file on the command line wins over an object store in the
// settings. With neither, every run starts from the first comment.
func checkpointStore(ctx context.Context, settings *config.Settings) (checkpoint.Store, error) {
	if *stateFile != "" {
		return checkpoint.NewFileStore(*stateFile), nil
	}
	if settings.UseMinioCheckpoint() {
		return checkpoint.NewMinioStore(ctx, settings.Checkpoint)
	}
	return nil, nil
}

// Exports the site's own comments to the comment host.
func main() {
	flag.Parse()
	config.SetVerbosity(*verbosity)
	ctx := context.Background()

	settings, err := config.Load(*configFile)
	if err != nil {
		logrus.WithError(err).Fatal("config.Load failed")
	}
	if err := settings.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid settings")
	}

	policy, err := rule.ParseErrorPolicy(*onError)
	if err != nil {
		logrus.WithError(err).Fatal("invalid --on-error")
	}
	runRule, err := rule.NewRunRule(append(settings.RuleOptions(),
		rule.OnError(policy),
		rule.DryRun(*dryRun),
	)...)
	if err != nil {
		logrus.WithError(err).Fatal("rule.NewRunRule failed")
	}

	state, err := checkpointStore(ctx, settings)
	if err != nil {
		logrus.WithError(err).Fatal("checkpoint store setup failed")
	}

	store := db.NewMirrorDb(settings.DbPath)
	if err := store.Open(); err != nil {
		logrus.WithError(err).Fatal("store.Open failed")
	}
	defer store.Close()

	client := disqus.New(settings.ClientOptions()...)
	ex := exporter.NewExporter(client, store, state, runRule, os.Stdout)
	if *fetchTitle {
		ex.WithTitles(craw.NewCrawler())
	}
	report, err := ex.Run(ctx)
	if err != nil {
		logrus.WithError(err).Error("exporter.Run failed")
		store.Close()
		os.Exit(1)
	}

	if !*dryRun {
		fmt.Printf("Exported %d of %d comment(s), last id %d\n", report.Exported, report.Total, report.LastId)
		if len(report.Failed) > 0 {
			fmt.Printf("Failed comment ids: %v\n", report.Failed)
		}
	}
}
