package akips

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akipsinv/internal/config"
)

func testConfig(host string) *config.Config {
	cfg := &config.Config{}
	cfg.Akips.Host = host
	cfg.Akips.Username = "api-ro"
	cfg.Akips.Password = "secret"
	return cfg
}

func TestNew_RequiresConnectionSettings(t *testing.T) {
	_, err := New(&config.Config{})
	assert.Error(t, err)

	cfg := &config.Config{}
	cfg.Akips.Host = "https://akips.example.com"
	_, err = New(cfg)
	assert.Error(t, err, "password is required")
}

func TestNew_RejectsMalformedProxy(t *testing.T) {
	cfg := testConfig("https://akips.example.com")
	cfg.Akips.Proxy = "http://bad proxy\x7f"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestQueryURL_Shape(t *testing.T) {
	c := &Client{host: "https://akips.example.com", username: "api-ro", password: "p w"}

	got := c.queryURL("list device group")
	assert.Equal(t,
		"https://akips.example.com/api-db?username=api-ro&password=p+w;cmds=list+device+group",
		got)
}

func TestListGroups_ConcatenatesDeviceAndSuperGroups(t *testing.T) {
	var cmds []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cmds = append(cmds, r.URL.RawQuery)
		switch len(cmds) {
		case 1:
			w.Write([]byte("Network-Core\nServers\n"))
		default:
			w.Write([]byte("Campus\n"))
		}
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	groups, err := c.ListGroups(context.Background())
	require.NoError(t, err)

	// device groups first, super groups appended, trailing empties preserved
	assert.Equal(t, []string{"Network-Core", "Servers", "", "Campus", ""}, groups)
	require.Len(t, cmds, 2)
	assert.Contains(t, cmds[0], "cmds=list+device+group")
	assert.Contains(t, cmds[1], "cmds=list+device+super+group")
}

func TestListGroupMembers_ParsesAndSkips(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery,
			"cmds=mget+*+*+ping4+PING.icmpState+value+/up/+any+group+Core")
		w.Write([]byte("sw1 ping4 PING.icmpState = 1,up,1679900000,10.0.0.1\r\n" +
			"sw2 ping4 PING.icmpState no ip here\n" +
			"\n" +
			"sw3 ping4 PING.icmpState = 1,up,1679900000,10.0.0.3\n"))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	members, err := c.ListGroupMembers(context.Background(), "Core")
	require.NoError(t, err)
	assert.Equal(t, []Member{
		{Name: "sw1", IP: "10.0.0.1"},
		{Name: "sw3", IP: "10.0.0.3"},
	}, members)
}

func TestQuery_NonSuccessStatusIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.ListGroups(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestParseMember(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Member
		ok   bool
	}{
		{"full line", "sw1 ping4 PING.icmpState = 1,up,1679900000,10.0.0.1", Member{"sw1", "10.0.0.1"}, true},
		{"no comma", "sw1 ping4 PING.icmpState up", Member{}, false},
		{"empty", "   ", Member{}, false},
		{"trailing comma", "sw1 state,", Member{}, false},
		{"ip only token", "sw1,192.168.1.1", Member{"sw1,192.168.1.1", "192.168.1.1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMember(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
