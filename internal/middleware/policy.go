package middleware

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// Access is the level a route requires.
type Access int

const (
	Public Access = iota + 1
	Authenticated
	Admin
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	}
	return "unknown"
}

// Rule binds one route, as "METHOD /full/path" with gin parameters, to its
// access level.
type Rule struct {
	Method string
	Path   string
	Access Access
}

// Policy is the declarative route table. Routes it does not list are denied.
type Policy struct {
	auth  *Authenticator
	rules map[string]Access
}

// NewPolicy returns an error on duplicate rules.
func NewPolicy(authn *Authenticator, rules []Rule) (*Policy, error) {
	p := &Policy{auth: authn, rules: make(map[string]Access, len(rules))}
	for _, r := range rules {
		key := routeKey(r.Method, r.Path)
		if _, dup := p.rules[key]; dup {
			return nil, fmt.Errorf("duplicate policy rule for %s", key)
		}
		p.rules[key] = r.Access
	}
	return p, nil
}

func routeKey(method, path string) string { return method + " " + path }

// Lookup returns the access level of a route.
func (p *Policy) Lookup(method, path string) (Access, bool) {
	a, ok := p.rules[routeKey(method, path)]
	return a, ok
}

// Verify fails when a registered route has no rule.
func (p *Policy) Verify(routes gin.RoutesInfo) error {
	var missing []string
	for _, r := range routes {
		if _, ok := p.Lookup(r.Method, r.Path); !ok {
			missing = append(missing, routeKey(r.Method, r.Path))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("routes without an access policy: %v", missing)
	}
	return nil
}

// Enforce applies the table. It runs as global middleware, after routing,
// so the matched path is known. Unmatched requests fall through to gin's 404.
func (p *Policy) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			c.Next()
			return
		}
		access, ok := p.Lookup(c.Request.Method, path)
		if !ok {
			abort(c, http.StatusForbidden, "Access denied", "")
			return
		}
		switch access {
		case Public:
			p.auth.identify(c)
		case Authenticated:
			if !p.auth.authenticate(c) {
				return
			}
		case Admin:
			if !p.auth.authenticate(c) {
				return
			}
			if !ActorFrom(c).IsAdmin() {
				abort(c, http.StatusForbidden, "Admin privileges required", "")
				return
			}
		}
		c.Next()
	}
}
