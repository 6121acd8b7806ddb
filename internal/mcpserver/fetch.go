package mcpserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"time"

	"github.com/erraggy/oascontract"
)

const (
	fetchTimeout = 30 * time.Second
	dialTimeout  = 10 * time.Second
	maxRedirects = 10
)

// nonPublic lists ranges that netip's predicates do not already cover.
var nonPublic = []netip.Prefix{
	netip.MustParsePrefix("100.64.0.0/10"), // carrier-grade NAT
	netip.MustParsePrefix("198.18.0.0/15"), // benchmarking
	netip.MustParsePrefix("64:ff9b:1::/48"),
}

// isPublic reports whether addr may be dialled for a url spec input.
func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() || addr.IsUnspecified() || addr.IsLoopback() || addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return false
	}
	for _, p := range nonPublic {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// publicAddr resolves host and returns its first address, failing when
// any resolved address is not public.
func publicAddr(ctx context.Context, host string) (netip.Addr, error) {
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(addrs) == 0 {
		return netip.Addr{}, fmt.Errorf("host %s has no addresses", host)
	}
	for _, a := range addrs {
		if !isPublic(a) {
			return netip.Addr{}, fmt.Errorf("host %s resolves to non-public address %s", host, a.Unmap())
		}
	}
	return addrs[0], nil
}

// specFetcher downloads contract documents for url inputs.
type specFetcher struct {
	client  *http.Client
	maxSize int64
}

// newSpecFetcher builds a fetcher. Unless allowPrivate is set, every dial
// and every redirect target must resolve to public addresses only.
func newSpecFetcher(allowPrivate bool, maxSize int64) *specFetcher {
	client := &http.Client{Timeout: fetchTimeout}
	if !allowPrivate {
		dialer := &net.Dialer{Timeout: dialTimeout}
		client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, network, hostport string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(hostport)
				if err != nil {
					return nil, err
				}
				addr, err := publicAddr(ctx, host)
				if err != nil {
					return nil, err
				}
				return dialer.DialContext(ctx, network, net.JoinHostPort(addr.Unmap().String(), port))
			},
		}
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("more than %d redirects", maxRedirects)
			}
			_, err := publicAddr(req.Context(), req.URL.Hostname())
			return err
		}
	}
	return &specFetcher{client: client, maxSize: maxSize}
}

// fetch downloads the document at rawURL.
func (f *specFetcher) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetching spec: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("fetching spec: unsupported URL scheme %q", u.Scheme)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching spec: %w", err)
	}
	req.Header.Set("User-Agent", oascontract.UserAgent())
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching spec: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching spec: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("fetching spec: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("fetched spec exceeds maximum %d bytes", f.maxSize)
	}
	return data, nil
}
