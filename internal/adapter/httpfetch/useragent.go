package httpfetch

import "sync"

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
}

// UserAgentPool hands out browser user agents in rotation.
type UserAgentPool struct {
	agents []string
	mu     sync.Mutex
	next   int
}

// NewUserAgentPool falls back to a built-in desktop browser list when agents is empty.
func NewUserAgentPool(agents ...string) *UserAgentPool {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	return &UserAgentPool{agents: agents}
}

// Next returns the next user agent, rotating sequentially.
func (p *UserAgentPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ua := p.agents[p.next]
	p.next = (p.next + 1) % len(p.agents)
	return ua
}
