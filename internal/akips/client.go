// Package akips implements the read-only client for the AKiPS api-db
// endpoint. It issues the two queries the inventory pipeline needs (list
// groups, list hosts in a group) and parses the newline-delimited text
// responses into structured records. Results are not cached at this layer;
// snapshot caching is the cache package's job.
package akips

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"akipsinv/internal/config"
)

// Member is one host returned by a group membership query.
type Member struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
}

// Client issues api-db queries against an AKiPS server.
type Client struct {
	host     string
	username string
	password string
	http     *http.Client
	debug    bool
}

// New creates a client from the application configuration. Missing
// connection settings and a malformed proxy URL are configuration errors,
// reported before any request is made.
func New(cfg *config.Config) (*Client, error) {
	if err := cfg.ValidateConnection(); err != nil {
		return nil, err
	}

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if cfg.Akips.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Akips.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	timeout := cfg.Akips.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		host:     strings.TrimRight(cfg.Akips.Host, "/"),
		username: cfg.Akips.Username,
		password: cfg.Akips.Password,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		debug: cfg.Server.Debug,
	}, nil
}

// debugLog logs a message only if debug mode is enabled in config
func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf(format, args...)
	}
}

// queryURL builds an api-db request URL. AKiPS separates the credentials
// from the command list with a semicolon and expects spaces inside the
// command encoded as '+'.
func (c *Client) queryURL(cmd string) string {
	return fmt.Sprintf("%s/api-db?username=%s&password=%s;cmds=%s",
		c.host,
		url.QueryEscape(c.username),
		url.QueryEscape(c.password),
		strings.ReplaceAll(cmd, " ", "+"))
}

// query runs one api-db command and returns the response body split into
// lines. Transport failures and non-2xx responses are fatal; no retries.
func (c *Client) query(ctx context.Context, cmd string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.queryURL(cmd), nil)
	if err != nil {
		return nil, fmt.Errorf("building akips request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("akips request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("akips request %q returned status %d", cmd, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading akips response: %w", err)
	}

	return splitLines(string(body)), nil
}

// ListGroups returns every device group name followed by every device super
// group name, in server order. Duplicates and empty lines are preserved;
// the resolution pipeline decides what to skip.
func (c *Client) ListGroups(ctx context.Context) ([]string, error) {
	groups, err := c.query(ctx, "list device group")
	if err != nil {
		return nil, err
	}

	super, err := c.query(ctx, "list device super group")
	if err != nil {
		return nil, err
	}

	c.debugLog("akips reported %d device groups and %d super groups", len(groups), len(super))
	return append(groups, super...), nil
}

// ListGroupMembers returns the hosts of one group that are up, in server
// order. Lines that are empty or carry no host or IP token are skipped.
func (c *Client) ListGroupMembers(ctx context.Context, group string) ([]Member, error) {
	cmd := "mget * * ping4 PING.icmpState value /up/ any group " + group
	lines, err := c.query(ctx, cmd)
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(lines))
	for _, line := range lines {
		m, ok := parseMember(line)
		if !ok {
			if strings.TrimSpace(line) != "" {
				c.debugLog("skipping malformed membership line %q in group %s", line, group)
			}
			continue
		}
		members = append(members, m)
	}
	return members, nil
}

// parseMember extracts the host name and IP address from one membership
// line: the host is the first space-delimited token, the IP the last
// comma-delimited token. A line without a comma carries no IP token.
func parseMember(line string) (Member, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Member{}, false
	}

	name := strings.Fields(trimmed)[0]

	comma := strings.LastIndex(trimmed, ",")
	if comma < 0 {
		return Member{}, false
	}
	ip := strings.TrimSpace(trimmed[comma+1:])
	if ip == "" {
		return Member{}, false
	}

	return Member{Name: name, IP: ip}, true
}

func splitLines(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.Split(body, "\n")
}
