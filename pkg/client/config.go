package client

import _config "github.com/kaba4cow/net/internal/config/client"

// Config Settings used when creating a new instance of Client.
type Config = _config.Config

func NewConfig(remoteAddress string, remotePort uint16, connectionless ...bool) _config.Config {
	useUdp := false
	if len(connectionless) > 0 {
		useUdp = connectionless[0]
	}
	cfg := _config.NewConfig(remoteAddress, remotePort)
	cfg.Connectionless = useUdp
	return cfg
}
