package main

import (
	"context"
	"fmt"
	"os"

	"github.com/davidleitw/disqus/internal/config"
	"github.com/davidleitw/disqus/internal/db"
	"github.com/davidleitw/disqus/internal/disqus"
	"github.com/davidleitw/disqus/internal/importer"
	"github.com/davidleitw/disqus/internal/rule"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	configFile = flag.String("config", "", "path to a disqus.yaml settings file")
	verbosity  = flag.IntP("verbosity", "v", 1, "verbosity level; 0=minimal output, 1=normal output, 2=verbose output, 3=very verbose output")
	onError    = flag.String("on-error", string(rule.Abort), `what to do when one record fails: "abort" or "continue"`)
	pageSize   = flag.Int("page-size", rule.DefaultPageSize, "number of posts fetched per get_forum_posts call")
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetReportCaller(true)
}

// Mirrors the configured forum with its threads and posts into the local
// database.
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

	policy, err := rule.ParseErrorPolicy(*onError)
	if err != nil {
		logrus.WithError(err).Fatal("invalid --on-error")
	}
	runRule, err := rule.NewRunRule(append(settings.RuleOptions(),
		rule.OnError(policy),
		rule.PageSize(*pageSize),
	)...)
	if err != nil {
		logrus.WithError(err).Fatal("rule.NewRunRule failed")
	}

	store := db.NewMirrorDb(settings.DbPath)
	if err := store.Open(); err != nil {
		logrus.WithError(err).Fatal("store.Open failed")
	}
	defer store.Close()

	client := disqus.New(settings.ClientOptions()...)
	report, err := importer.NewImporter(client, store, runRule).Run(context.Background())
	if err != nil {
		logrus.WithError(err).Error("importer.Run failed")
		store.Close()
		os.Exit(1)
	}

	fmt.Printf("Imported %d forum(s), %d thread(s), %d post(s); %d record(s) failed\n",
		report.Forums, report.Threads, report.Posts, report.Failed)
}
