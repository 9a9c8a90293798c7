package config

import (
	"sync/atomic"

	"github.com/kaba4cow/net/internal/config/client"
	"github.com/kaba4cow/net/internal/config/server"
)

type Config interface {
	client.Config | server.Config
}

type Configurable[T Config] interface {
	Config() T
	SetConfig(T)
}

type DefaultConfigurable[T Config] struct {
	_config atomic.Pointer[T]
}

func (c *DefaultConfigurable[T]) Config() T {
	return *c._config.Load()
}

func (c *DefaultConfigurable[T]) SetConfig(cfg T) {
	c._config.Store(&cfg)
}
