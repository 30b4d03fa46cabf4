package pool

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config defines outbound HTTP connection pooling
type Config struct {
	DialTimeout         time.Duration
	RequestTimeout      time.Duration
	IdleTimeout         time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		DialTimeout:         5 * time.Second,
		RequestTimeout:      30 * time.Second,
		IdleTimeout:         90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}
}

// HTTPPool hands out one pooled *http.Client per provider. Clients are
// created on first use and shared afterwards.
type HTTPPool struct {
	mu      sync.RWMutex
	clients map[string]*http.Client
	config  Config
	logger  *zap.Logger
}

func New(config Config, logger *zap.Logger) *HTTPPool {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPPool{
		clients: make(map[string]*http.Client),
		config:  config,
		logger:  logger,
	}
}

// Client returns the HTTP client for the named provider
func (p *HTTPPool) Client(name string) *http.Client {
	p.mu.RLock()
	client, exists := p.clients[name]
	p.mu.RUnlock()

	if exists {
		return client
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double check after acquiring write lock
	if client, exists = p.clients[name]; exists {
		return client
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   p.config.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          p.config.MaxIdleConns,
		MaxIdleConnsPerHost:   p.config.MaxIdleConnsPerHost,
		IdleConnTimeout:       p.config.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	client = &http.Client{
		Transport: transport,
		Timeout:   p.config.RequestTimeout,
	}
	p.clients[name] = client

	p.logger.Info("Created new HTTP client", zap.String("provider", name))
	return client
}

func (p *HTTPPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}

// CloseIdleConnections closes idle connections of every client
func (p *HTTPPool) CloseIdleConnections() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, client := range p.clients {
		client.CloseIdleConnections()
	}
}
