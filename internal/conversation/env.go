package conversation

import (
	"net"
	"net/url"
	"time"
)

// Env abstracts the ambient world (clock, connectivity) so the
// machine and the upload path can be driven deterministically in
// tests.
type Env interface {
	Now() time.Time
	Online() bool
}

// SystemEnv probes connectivity by dialing the webhook host.
type SystemEnv struct {
	Endpoint    string
	DialTimeout time.Duration
}

func NewSystemEnv(endpoint string) *SystemEnv {
	return &SystemEnv{Endpoint: endpoint, DialTimeout: 2 * time.Second}
}

func (e *SystemEnv) Now() time.Time { return time.Now() }

func (e *SystemEnv) Online() bool {
	u, err := url.Parse(e.Endpoint)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		default:
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	conn, err := net.DialTimeout("tcp", host, e.DialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
