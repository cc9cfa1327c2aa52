package tenant

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const (
	// MaxTenantIDLength prevents abuse via very long identifiers and keeps
	// resolved ids DNS- and schema-name-compatible.
	MaxTenantIDLength = 63
)

// identifierPattern keeps tenant identifiers safe for use in headers, URLs,
// and database object names: alphanumeric start, hyphens and underscores allowed.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

func isValidIdentifier(id string) bool {
	if id == "" || len(id) > MaxTenantIDLength {
		return false
	}
	return identifierPattern.MatchString(id)
}

// strategyKind enumerates the closed set of resolution strategies.
type strategyKind int

const (
	kindHost strategyKind = iota
	kindSubdomain
	kindHeader
	kindPath
	kindComposite
)

func (k strategyKind) String() string {
	switch k {
	case kindHost:
		return "host"
	case kindSubdomain:
		return "subdomain"
	case kindHeader:
		return "header"
	case kindPath:
		return "path"
	case kindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Strategy is one member of the closed set of resolution strategies:
// host, subdomain, header, path, or composite. Construct values with the
// *Strategy constructors; the zero value resolves nothing.
type Strategy struct {
	kind strategyKind

	// host
	hostMapping map[string]string
	hostPattern *regexp.Regexp

	// subdomain / path
	position int
	// subdomain
	baseDomain string
	// path
	pathPrefix string

	// header
	idHeader      string
	domainHeader  string
	requireHeader bool

	// composite
	children []Strategy
}

// match is the internal outcome of a successful strategy resolution.
type match struct {
	tenantID     string
	method       Method
	resolvedFrom string
}

// NewHostStrategy resolves tenants by exact host lookup in the mapping table,
// falling back to a templated pattern like "{tenant}.platform.example" where
// {tenant} becomes a capture group. Either the mapping or the pattern may be
// empty, but not both.
func NewHostStrategy(mapping map[string]string, pattern string) (Strategy, error) {
	if len(mapping) == 0 && pattern == "" {
		return Strategy{}, fmt.Errorf("host strategy: mapping or pattern required")
	}

	s := Strategy{kind: kindHost, hostMapping: mapping}

	if pattern != "" {
		if !strings.Contains(pattern, "{tenant}") {
			return Strategy{}, fmt.Errorf("host strategy: pattern %q missing {tenant} placeholder", pattern)
		}
		quoted := regexp.QuoteMeta(pattern)
		expr := "^" + strings.Replace(quoted, regexp.QuoteMeta("{tenant}"), `([a-zA-Z0-9][a-zA-Z0-9_-]*)`, 1) + "$"
		re, err := regexp.Compile(expr)
		if err != nil {
			return Strategy{}, fmt.Errorf("host strategy: compile pattern %q: %w", pattern, err)
		}
		s.hostPattern = re
	}

	return s, nil
}

// NewSubdomainStrategy resolves the tenant from the host segment at the given
// zero-based position, optionally requiring the host to end with baseDomain.
func NewSubdomainStrategy(position int, baseDomain string) Strategy {
	return Strategy{
		kind:       kindSubdomain,
		position:   position,
		baseDomain: strings.TrimPrefix(baseDomain, "."),
	}
}

// NewHeaderStrategy resolves the tenant from the id header, then from the
// domain header mapped through the host mapping table. When required is set,
// absence of both headers is a hard resolution failure rather than a
// fall-through to the next strategy.
func NewHeaderStrategy(idHeader, domainHeader string, mapping map[string]string, required bool) Strategy {
	if idHeader == "" {
		idHeader = "X-Tenant-ID"
	}
	return Strategy{
		kind:          kindHeader,
		idHeader:      idHeader,
		domainHeader:  domainHeader,
		hostMapping:   mapping,
		requireHeader: required,
	}
}

// NewPathStrategy resolves the tenant from the URL path segment at the given
// zero-based position, after stripping the optional prefix.
func NewPathStrategy(position int, prefix string) Strategy {
	return Strategy{
		kind:       kindPath,
		position:   position,
		pathPrefix: strings.Trim(prefix, "/"),
	}
}

// NewCompositeStrategy tries the given strategies in order and returns the
// first success. A hard failure from a required header short-circuits; when
// every strategy fails, all failure reasons are aggregated.
func NewCompositeStrategy(children ...Strategy) Strategy {
	return Strategy{kind: kindComposite, children: children}
}

// Kind returns the strategy's name for logging and error reporting.
func (s Strategy) Kind() string {
	return s.kind.String()
}

// resolve maps request metadata to a candidate tenant id. Outcomes are a
// match, errNoMatch (try the next strategy or the fallback), *NotFoundError
// (identifier present but unmapped), or *ResolutionError (hard failure).
// The dispatch switch is exhaustive over the closed strategy set.
func (s Strategy) resolve(r *http.Request) (match, error) {
	switch s.kind {
	case kindHost:
		return s.resolveHost(r)
	case kindSubdomain:
		return s.resolveSubdomain(r)
	case kindHeader:
		return s.resolveHeader(r)
	case kindPath:
		return s.resolvePath(r)
	case kindComposite:
		return s.resolveComposite(r)
	default:
		return match{}, &ResolutionError{Strategy: s.kind.String(), Message: "strategy not configured"}
	}
}

func (s Strategy) resolveHost(r *http.Request) (match, error) {
	host := stripPort(r.Host)
	if host == "" {
		return match{}, &ResolutionError{Strategy: "host", Message: "request has no host"}
	}

	if id, ok := s.hostMapping[host]; ok {
		return match{tenantID: id, method: MethodHostMapping, resolvedFrom: host}, nil
	}

	if s.hostPattern != nil {
		if m := s.hostPattern.FindStringSubmatch(host); m != nil {
			return match{tenantID: m[1], method: MethodHostPattern, resolvedFrom: host}, nil
		}
	}

	return match{}, &NotFoundError{Identifier: host, Method: MethodHostMapping}
}

func (s Strategy) resolveSubdomain(r *http.Request) (match, error) {
	host := stripPort(r.Host)
	if host == "" {
		return match{}, &ResolutionError{Strategy: "subdomain", Message: "request has no host"}
	}

	if s.baseDomain != "" && !strings.HasSuffix(host, "."+s.baseDomain) && host != s.baseDomain {
		return match{}, &ResolutionError{
			Strategy: "subdomain",
			Message:  fmt.Sprintf("host %q is not under base domain %q", host, s.baseDomain),
		}
	}

	parts := strings.Split(host, ".")
	if s.position < 0 || s.position >= len(parts) {
		return match{}, &ResolutionError{
			Strategy: "subdomain",
			Message:  fmt.Sprintf("position %d exceeds %d host segments", s.position, len(parts)),
		}
	}

	segment := parts[s.position]
	if !isValidIdentifier(segment) {
		return match{}, &ResolutionError{
			Strategy: "subdomain",
			Message:  fmt.Sprintf("segment %q is not a valid tenant identifier", segment),
		}
	}

	return match{tenantID: segment, method: MethodSubdomain, resolvedFrom: segment}, nil
}

func (s Strategy) resolveHeader(r *http.Request) (match, error) {
	if value := strings.TrimSpace(r.Header.Get(s.idHeader)); value != "" {
		if !isValidIdentifier(value) {
			return match{}, &ResolutionError{
				Strategy: "header",
				Message:  fmt.Sprintf("header %s carries an invalid tenant identifier", s.idHeader),
			}
		}
		return match{tenantID: value, method: MethodHeader, resolvedFrom: value}, nil
	}

	if s.domainHeader != "" {
		if domain := strings.TrimSpace(r.Header.Get(s.domainHeader)); domain != "" {
			if id, ok := s.hostMapping[domain]; ok {
				return match{tenantID: id, method: MethodDomainHeader, resolvedFrom: domain}, nil
			}
			return match{}, &NotFoundError{Identifier: domain, Method: MethodDomainHeader}
		}
	}

	if s.requireHeader {
		// Hard failure, distinct from "try the next strategy": the policy
		// says requests without the header are rejected outright.
		return match{}, &ResolutionError{
			Strategy: "header",
			Message:  fmt.Sprintf("required header %s is missing", s.idHeader),
		}
	}

	return match{}, errNoMatch
}

func (s Strategy) resolvePath(r *http.Request) (match, error) {
	path := strings.Trim(r.URL.Path, "/")
	if s.pathPrefix != "" {
		trimmed, ok := strings.CutPrefix(path, s.pathPrefix)
		if !ok {
			return match{}, errNoMatch
		}
		path = strings.TrimPrefix(trimmed, "/")
	}

	if path == "" {
		return match{}, errNoMatch
	}

	parts := strings.Split(path, "/")
	if s.position < 0 || s.position >= len(parts) {
		return match{}, &ResolutionError{
			Strategy: "path",
			Message:  fmt.Sprintf("position %d exceeds %d path segments", s.position, len(parts)),
		}
	}

	segment := parts[s.position]
	if !isValidIdentifier(segment) {
		return match{}, &ResolutionError{
			Strategy: "path",
			Message:  fmt.Sprintf("segment %q is not a valid tenant identifier", segment),
		}
	}

	return match{tenantID: segment, method: MethodPath, resolvedFrom: segment}, nil
}

func (s Strategy) resolveComposite(r *http.Request) (match, error) {
	var errs []error

	for _, child := range s.children {
		m, err := child.resolve(r)
		if err == nil {
			return m, nil
		}

		// A required header is a policy decision, not a fall-through:
		// stop trying further strategies.
		if child.kind == kindHeader && child.requireHeader {
			var re *ResolutionError
			if errors.As(err, &re) {
				return match{}, err
			}
		}

		if !errors.Is(err, errNoMatch) {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return match{}, errNoMatch
	}
	if len(errs) == 1 {
		return match{}, errs[0]
	}
	return match{}, errors.Join(errs...)
}

func stripPort(host string) string {
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.HasSuffix(host, "]") {
		// Don't strip from bare IPv6 literals like [::1].
		if !strings.Contains(host[idx:], "]") {
			return host[:idx]
		}
	}
	return host
}
