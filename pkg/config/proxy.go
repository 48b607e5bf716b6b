package config

import (
	"net/http"
	"net/url"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/inercia/go-memllm/pkg/llm"
)

// Proxy scheme keys accepted in a proxy map.
const (
	ProxySchemeHTTP  = "http"
	ProxySchemeHTTPS = "https"
	ProxySchemeAll   = "all"
)

// Proxies routes vendor traffic through HTTP proxies. It holds either a
// single proxy URL used for every request, or a map from request scheme
// ("http", "https", or "all" as fallback) to proxy URL.
type Proxies struct {
	single  string
	schemes map[string]string
}

// ProxyURL routes every request through one proxy.
func ProxyURL(raw string) Proxies {
	return Proxies{single: raw}
}

// ProxyMap routes requests by scheme.
func ProxyMap(schemes map[string]string) Proxies {
	return Proxies{schemes: lo.Assign(schemes)}
}

// IsSet reports whether any proxy was configured.
func (p Proxies) IsSet() bool {
	return p.single != "" || len(p.schemes) > 0
}

// IsZero lets YAML omit an unset proxy block.
func (p Proxies) IsZero() bool {
	return !p.IsSet()
}

// proxyFunc validates the configured URLs and returns a function suitable
// for http.Transport.Proxy.
func (p Proxies) proxyFunc() (func(*http.Request) (*url.URL, error), error) {
	if p.single != "" {
		u, err := parseProxyURL("http_client_proxies", p.single)
		if err != nil {
			return nil, err
		}
		return http.ProxyURL(u), nil
	}

	parsed := make(map[string]*url.URL, len(p.schemes))
	schemes := lo.Keys(p.schemes)
	sort.Strings(schemes)
	for _, scheme := range schemes {
		switch scheme {
		case ProxySchemeHTTP, ProxySchemeHTTPS, ProxySchemeAll:
		default:
			return nil, llm.NewConfigurationError("invalid_proxy",
				"http_client_proxies: unknown scheme %q (expected http, https or all)", scheme)
		}
		u, err := parseProxyURL("http_client_proxies."+scheme, p.schemes[scheme])
		if err != nil {
			return nil, err
		}
		parsed[scheme] = u
	}

	return func(req *http.Request) (*url.URL, error) {
		if u, ok := parsed[req.URL.Scheme]; ok {
			return u, nil
		}
		return parsed[ProxySchemeAll], nil
	}, nil
}

func parseProxyURL(field, raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, llm.NewConfigurationError("invalid_proxy", "%s: %v", field, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, llm.NewConfigurationError("invalid_proxy", "%s: %q is not an absolute URL", field, raw)
	}
	return u, nil
}

// MarshalYAML writes the proxy back in the form it was given.
func (p Proxies) MarshalYAML() (any, error) {
	if p.single != "" {
		return p.single, nil
	}
	if len(p.schemes) > 0 {
		return p.schemes, nil
	}
	return nil, nil
}

// UnmarshalYAML accepts a scalar URL or a scheme-to-URL mapping.
func (p *Proxies) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*p = Proxies{}
			return nil
		}
		*p = ProxyURL(value.Value)
		return nil
	case yaml.MappingNode:
		var m map[string]string
		if err := value.Decode(&m); err != nil {
			return llm.NewConfigurationError("invalid_proxy", "line %d: http_client_proxies: %v", value.Line, err)
		}
		*p = ProxyMap(m)
		return nil
	}
	return llm.NewConfigurationError("invalid_proxy",
		"line %d: http_client_proxies must be a URL or a scheme map", value.Line)
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// newHTTPClient builds the client shared by every call made through one
// configuration.
func newHTTPClient(proxies Proxies, headers map[string]string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxies.IsSet() {
		fn, err := proxies.proxyFunc()
		if err != nil {
			return nil, err
		}
		transport.Proxy = fn
	}

	var rt http.RoundTripper = transport
	if len(headers) > 0 {
		rt = &headerTransport{base: transport, headers: lo.Assign(headers)}
	}
	return &http.Client{Transport: rt}, nil
}
