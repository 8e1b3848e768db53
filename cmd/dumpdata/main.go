package main

import (
	"context"
	"os"

	"github.com/davidleitw/disqus/internal/config"
	"github.com/davidleitw/disqus/internal/disqus"
	"github.com/davidleitw/disqus/internal/dump"
	"github.com/davidleitw/disqus/internal/rule"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	configFile = flag.String("config", "", "path to a disqus.yaml settings file")
	indent     = flag.Int("indent", 0, "specifies the indent level to use when pretty-printing output")
	filter     = flag.String("filter", "", "type of entries that should be returned")
	exclude    = flag.String("exclude", "", "type of entries that should be excluded from the response")
	verbosity  = flag.IntP("verbosity", "v", 1, "verbosity level; 0=minimal output, 1=normal output, 2=verbose output, 3=very verbose output")
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetReportCaller(true)
	logrus.SetOutput(os.Stderr)
}

// Outputs the forum's posts in JSON format.
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

	runRule, err := rule.NewRunRule(append(settings.RuleOptions(),
		rule.Filter(*filter),
		rule.Exclude(*exclude),
	)...)
	if err != nil {
		logrus.WithError(err).Fatal("rule.NewRunRule failed")
	}

	client := disqus.New(settings.ClientOptions()...)
	if err := dump.NewDumper(client, runRule).Run(context.Background(), os.Stdout, *indent); err != nil {
		logrus.WithError(err).Fatal("dump.Run failed")
	}
}
