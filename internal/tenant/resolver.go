package tenant

import (
	"net"
	"net/http"
	"strings"
)

// Reserved subdomains that map to an application segment instead of a
// company career page.
const (
	SubdomainApp   = "app"
	SubdomainAdmin = "admin"
)

// Resolver rewrites the request path based on the host's subdomain before the
// router sees it: app.<base> serves the tenant panel, admin.<base> the
// operator panel, and any other subdomain the public career page for that
// company slug.
type Resolver struct {
	baseDomain string
	next       http.Handler
}

func NewResolver(baseDomain string, next http.Handler) *Resolver {
	return &Resolver{baseDomain: baseDomain, next: next}
}

func (r *Resolver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	req.URL.Path = ResolvePath(r.baseDomain, req.Host, req.URL.Path)
	r.next.ServeHTTP(w, req)
}

// ResolvePath is the pure per-request routing function: host + path in,
// internal route path out.
func ResolvePath(baseDomain, host, path string) string {
	// The root path is always the public marketing page, whatever the
	// subdomain says.
	if path == "" || path == "/" {
		return "/"
	}

	sub := Subdomain(baseDomain, host)
	switch sub {
	case "", "www":
		return path
	case SubdomainApp:
		return prefix(path, "/app")
	case SubdomainAdmin:
		return prefix(path, "/admin")
	default:
		return prefix(path, "/careers/"+sub)
	}
}

// Subdomain extracts the subdomain of host relative to baseDomain. Hosts
// outside baseDomain resolve to the public site.
func Subdomain(baseDomain, host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	if host == baseDomain {
		return ""
	}
	if !strings.HasSuffix(host, "."+baseDomain) {
		return ""
	}
	return strings.TrimSuffix(host, "."+baseDomain)
}

func prefix(path, segment string) string {
	if path == segment || strings.HasPrefix(path, segment+"/") {
		return path
	}
	return segment + path
}
