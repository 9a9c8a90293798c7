package server

import _config "github.com/kaba4cow/net/internal/config/server"

// Config Settings used when creating a new instance of Server.
type Config = _config.Config

func NewConfig(address string, port uint16, connectionless ...bool) _config.Config {
	useUdp := false
	if len(connectionless) > 0 {
		useUdp = connectionless[0]
	}
	cfg := _config.NewConfig(address, port)
	cfg.Connectionless = useUdp
	return cfg
}
