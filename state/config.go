package state

import "time"

// RouterCfg holds the protocol timers of a single router.
type RouterCfg struct {
	UpdateInterval     time.Duration `yaml:"update_interval"`
	ExpirationInterval time.Duration `yaml:"expiration_interval"`
	RemovalInterval    time.Duration `yaml:"removal_interval"`
	SweepInterval      time.Duration `yaml:"sweep_interval"`
}

// ReceiveTimeout bounds one socket read so the receive loop can observe a stop.
func (c RouterCfg) ReceiveTimeout() time.Duration {
	return c.UpdateInterval + ReceiveSlack
}

func (c RouterCfg) SendTimeout() time.Duration {
	return c.UpdateInterval / 2
}

func DefaultRouterCfg() RouterCfg {
	return RouterCfg{
		UpdateInterval:     UpdateInterval,
		ExpirationInterval: ExpirationInterval,
		RemovalInterval:    RemovalInterval,
		SweepInterval:      SweepInterval,
	}
}

// SimCfg describes a whole loopback simulation.
type SimCfg struct {
	RouterCfg  `yaml:",inline"`
	Routers    int           `yaml:"routers"`
	MaxRouters int           `yaml:"max_routers"`
	BasePort   uint16        `yaml:"base_port"`
	IpPrefix   string        `yaml:"ip_prefix"`          // synthetic addresses are IpPrefix + n
	Topology   string        `yaml:"topology"`           // e.g. "1-2, 2-3", 1-based router indexes
	StartDelay time.Duration `yaml:"start_delay"`        // gap between starting successive routers
	LogPath    string        `yaml:"log_path,omitempty"` // if not empty, logs are also written here
}

func DefaultSimCfg() SimCfg {
	return SimCfg{
		RouterCfg:  DefaultRouterCfg(),
		Routers:    DefaultRouters,
		MaxRouters: DefaultMaxRouters,
		BasePort:   DefaultBasePort,
		IpPrefix:   DefaultIpPrefix,
		Topology:   DefaultTopology,
		StartDelay: StartDelay,
	}
}
