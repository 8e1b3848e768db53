// Package embed renders the HTML and JavaScript snippets that put the
// comment widgets on a page.
package embed

import (
	"bytes"
	"errors"
	"html/template"
	"time"
)

var (
	devTmpl = template.Must(template.New("dev").Parse(`<script type="text/javascript">
  var disqus_developer = 1;
  var disqus_url = {{.}};
</script>
`))

	numRepliesTmpl = template.Must(template.New("num_replies").Parse(`<script type="text/javascript">
var disqus_shortname = {{.}};
(function () {
    var s = document.createElement('script'); s.async = true;
    s.src = 'http://disqus.com/forums/' + disqus_shortname + '/count.js';
    (document.getElementsByTagName('HEAD')[0] || document.getElementsByTagName('BODY')[0]).appendChild(s);
}());
</script>
`))

	showCommentsTmpl = template.Must(template.New("show_comments").Parse(`<div id="disqus_thread"></div>
<script type="text/javascript">
var disqus_shortname = {{.}};
var disqus_domain = 'disqus.com';
(function() {
    var dsq = document.createElement('script'); dsq.type = 'text/javascript';
    dsq.async = true;
    dsq.src = 'http://' + disqus_shortname + '.' + disqus_domain + '/embed.js';
    (document.getElementsByTagName('head')[0] || document.getElementsByTagName('body')[0]).appendChild(dsq);
})();
</script>
<noscript>Please enable JavaScript to view the <a href="http://disqus.com/?ref_noscript=">comments powered by Disqus.</a></noscript>
<p><a href="http://disqus.com" class="dsq-brlink">blog comments powered by <span class="logo-disqus">Disqus</span></a></p>
`))

	configTmpl = template.Must(template.New("config").Parse(`<script type="text/javascript">
var disqus_shortname = {{.Shortname}};
{{- with .Identifier}}
var disqus_identifier = {{.}};
{{- end}}
{{- with .URL}}
var disqus_url = {{.}};
{{- end}}
{{- with .Title}}
var disqus_title = {{.}};
{{- end}}
{{- with .CategoryID}}
var disqus_category_id = {{.}};
{{- end}}
{{- if .RemoteAuth}}
var disqus_config = function () {
    this.page.remote_auth_s3 = {{.RemoteAuth}};
    this.page.api_key = {{.PublicKey}};
};
{{- end}}
</script>
`))
)

type Settings struct {
	Shortname string
	// Domain is the site's own host name, used by the development snippet.
	Domain string
	Debug  bool

	UseSingleSignOn bool
	PublicKey       string
	SecretKey       string
}

// Page describes the page a comment thread is shown on.
type Page struct {
	Identifier string
	URL        string
	Title      string
	CategoryID string
	User       *User
}

type Snippets struct {
	settings Settings
	now      func() time.Time
}

func NewSnippets(settings Settings) (*Snippets, error) {
	if settings.Shortname == "" {
		return nil, errors.New("forum shortname is not set")
	}
	if settings.UseSingleSignOn && (settings.PublicKey == "" || settings.SecretKey == "") {
		return nil, errors.New("single sign-on needs both a public and a secret key")
	}
	return &Snippets{settings: settings, now: time.Now}, nil
}

func render(tmpl *template.Template, data any) (template.HTML, error) {
	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Dev tells the widget it runs on a development server. Empty unless the
// settings are in debug mode.
func (s *Snippets) Dev() (template.HTML, error) {
	if !s.settings.Debug {
		return "", nil
	}
	return render(devTmpl, "http://"+s.settings.Domain+"/")
}

// NumReplies loads count.js, which turns links ending in #disqus_thread into
// comment counts.
func (s *Snippets) NumReplies() (template.HTML, error) {
	return render(numRepliesTmpl, s.settings.Shortname)
}

func (s *Snippets) ShowComments() (template.HTML, error) {
	return render(showCommentsTmpl, s.settings.Shortname)
}

// Config sets the per-page disqus_* variables, signing the visitor when
// single sign-on is on.
func (s *Snippets) Config(page Page) (template.HTML, error) {
	data := struct {
		Page
		Shortname  string
		RemoteAuth string
		PublicKey  string
	}{Page: page, Shortname: s.settings.Shortname}

	if s.settings.UseSingleSignOn {
		auth, err := SignUser(s.settings.SecretKey, page.User, s.now())
		if err != nil {
			return "", err
		}
		data.RemoteAuth = auth
		data.PublicKey = s.settings.PublicKey
	}
	return render(configTmpl, data)
}
