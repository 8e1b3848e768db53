package embed

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Headers a fronting proxy sets to pass the signed-in visitor along. They are
// only read in trusted proxy mode.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserName  = "X-User-Name"
	HeaderUserEmail = "X-User-Email"
)

var userHeaders = []string{HeaderUserID, HeaderUserName, HeaderUserEmail}

type RouterOption func(*routerOptions)

type routerOptions struct {
	trustUserHeaders bool
}

// TrustUserHeaders signs the visitor named by the X-User-* headers. Only
// enable it when the router is reachable solely through a proxy that
// authenticates the visitor and overwrites those headers on every request.
// Otherwise every visitor is signed as anonymous.
func TrustUserHeaders(trust bool) RouterOption {
	return func(o *routerOptions) {
		o.trustUserHeaders = trust
	}
}

// NewRouter serves the snippets as HTML fragments under /disqus, for pages
// that are not rendered by Go. Cross-origin requests are only allowed from
// the site's own domain.
func NewRouter(snippets *Snippets, opts ...RouterOption) *gin.Engine {
	o := &routerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if domain := snippets.settings.Domain; domain != "" {
		router.Use(cors.New(cors.Config{
			AllowOrigins: []string{"http://" + domain, "https://" + domain},
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{"Accept"},
			MaxAge:       300 * time.Second,
		}))
	}

	group := router.Group("/disqus")
	{
		group.Use(gin.Logger())
		if !o.trustUserHeaders {
			group.Use(dropUserHeaders)
		}

		group.GET("/dev", fragment(func(*gin.Context) (template.HTML, error) { return snippets.Dev() }))
		group.GET("/num-replies", fragment(func(*gin.Context) (template.HTML, error) { return snippets.NumReplies() }))
		group.GET("/comments", fragment(func(*gin.Context) (template.HTML, error) { return snippets.ShowComments() }))
		group.GET("/config", fragment(func(c *gin.Context) (template.HTML, error) { return snippets.Config(pageFromRequest(c)) }))
	}

	return router
}

// dropUserHeaders discards identities asserted by the caller itself.
func dropUserHeaders(c *gin.Context) {
	for _, h := range userHeaders {
		if c.GetHeader(h) != "" {
			logrus.WithField("header", h).Debug("ignoring untrusted user header")
		}
		c.Request.Header.Del(h)
	}
	c.Next()
}

func fragment(build func(*gin.Context) (template.HTML, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		html, err := build(c)
		if err != nil {
			logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("render snippet failed")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	}
}

func pageFromRequest(c *gin.Context) Page {
	page := Page{
		Identifier: c.Query("identifier"),
		URL:        c.Query("url"),
		Title:      c.Query("title"),
		CategoryID: c.Query("category_id"),
	}
	if id := c.GetHeader(HeaderUserID); id != "" {
		page.User = &User{
			ID:       id,
			Username: c.GetHeader(HeaderUserName),
			Email:    c.GetHeader(HeaderUserEmail),
		}
	}
	return page
}
