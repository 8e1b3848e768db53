package main

import (
	"github.com/davidleitw/disqus/internal/config"
	"github.com/davidleitw/disqus/internal/embed"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	configFile = flag.String("config", "", "path to a disqus.yaml settings file")
	listenAddr = flag.String("listen", "", "address to serve on, overrides the listen_addr setting")
	verbosity  = flag.IntP("verbosity", "v", 1, "verbosity level; 0=minimal output, 1=normal output, 2=verbose output, 3=very verbose output")
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetReportCaller(true)
}

// Serves the comment widget snippets as HTML fragments.
func main() {
	flag.Parse()
	config.SetVerbosity(*verbosity)

	settings, err := config.Load(*configFile)
	if err != nil {
		logrus.WithError(err).Fatal("config.Load failed")
	}
	if !settings.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	snippets, err := embed.NewSnippets(settings.Embed())
	if err != nil {
		logrus.WithError(err).Fatal("embed.NewSnippets failed")
	}

	addr := settings.ListenAddr
	if *listenAddr != "" {
		addr = *listenAddr
	}

	if settings.TrustUserHeaders {
		logrus.Warn("Signing X-User-* identities, the server must only be reachable through the authenticating proxy")
	}
	logrus.WithField("addr", addr).Info("Serving snippets")
	if err := embed.NewRouter(snippets, embed.TrustUserHeaders(settings.TrustUserHeaders)).Run(addr); err != nil {
		logrus.WithError(err).Fatal("router.Run failed")
	}
}
