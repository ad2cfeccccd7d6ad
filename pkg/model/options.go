package model

import (
	"net/http"
	"time"
)

const (
	DefaultUploadPath = "/upload"
	DefaultFieldName  = "audio"
)

type ClientOption interface {
	apply(*ClientConfig)
}

type clientOptionFunc func(*ClientConfig)

func (f clientOptionFunc) apply(cfg *ClientConfig) {
	f(cfg)
}

type ClientConfig struct {
	URL        string
	UploadPath string
	FieldName  string
	UserAgent  string
	HTTPClient *http.Client
	// Timeout of zero means no client-side timeout.
	Timeout time.Duration
}

func ResolveClientOpts(opts ...ClientOption) ClientConfig {
	cfg := ClientConfig{
		UploadPath: DefaultUploadPath,
		FieldName:  DefaultFieldName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}
	return cfg
}

func WithURL(value string) ClientOption {
	return clientOptionFunc(func(cfg *ClientConfig) {
		cfg.URL = value
	})
}

func WithUploadPath(value string) ClientOption {
	return clientOptionFunc(func(cfg *ClientConfig) {
		if value != "" {
			cfg.UploadPath = value
		}
	})
}

func WithFieldName(value string) ClientOption {
	return clientOptionFunc(func(cfg *ClientConfig) {
		if value != "" {
			cfg.FieldName = value
		}
	})
}

func WithUserAgent(value string) ClientOption {
	return clientOptionFunc(func(cfg *ClientConfig) {
		cfg.UserAgent = value
	})
}

func WithHTTPClient(value *http.Client) ClientOption {
	return clientOptionFunc(func(cfg *ClientConfig) {
		cfg.HTTPClient = value
	})
}

func WithTimeout(value time.Duration) ClientOption {
	return clientOptionFunc(func(cfg *ClientConfig) {
		cfg.Timeout = value
	})
}
