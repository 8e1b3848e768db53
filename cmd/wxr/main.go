package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/davidleitw/disqus/internal/config"
	"github.com/davidleitw/disqus/internal/db"
	"github.com/davidleitw/disqus/internal/wxr"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	configFile  = flag.String("config", "", "path to a disqus.yaml settings file")
	output      = flag.StringP("output", "o", "", "write the feed to this file instead of stdout")
	title       = flag.String("title", "", "channel title, defaults to the site domain")
	description = flag.String("description", "", "channel description")
	verbosity   = flag.IntP("verbosity", "v", 1, "verbosity level; 0=minimal output, 1=normal output, 2=verbose output, 3=very verbose output")
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetReportCaller(true)
	logrus.SetOutput(os.Stderr)
}

// Writes every local comment as a WXR document for a bulk import.
func main() {
	flag.Parse()
	config.SetVerbosity(*verbosity)

	settings, err := config.Load(*configFile)
	if err != nil {
		logrus.WithError(err).Fatal("config.Load failed")
	}

	store := db.NewMirrorDb(settings.DbPath)
	if err := store.Open(); err != nil {
		logrus.WithError(err).Fatal("store.Open failed")
	}
	defer store.Close()

	comments, err := store.AllComments(context.Background())
	if err != nil {
		logrus.WithError(err).Error("store.AllComments failed")
		return
	}

	feed := &wxr.Feed{
		Title:        *title,
		Link:         fmt.Sprintf("http://%s/", settings.SiteDomain),
		Description:  *description,
		SingleSignOn: settings.UseSingleSignOn,
		Items:        wxr.FromComments(comments, settings.SiteDomain),
	}
	if feed.Title == "" {
		feed.Title = settings.SiteDomain
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logrus.WithError(err).Error("os.Create failed")
			return
		}
		defer f.Close()
		out = f
	}

	if _, err := feed.WriteTo(out); err != nil {
		logrus.WithError(err).Error("feed.WriteTo failed")
		return
	}
	logrus.Infof("Wrote %d comment(s) on %d page(s)", len(comments), len(feed.Items))
}
