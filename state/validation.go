package state

import (
	"fmt"
	"math"
)

func RouterConfigValidator(cfg *RouterCfg) error {
	if cfg.UpdateInterval <= 0 {
		return fmt.Errorf("update_interval must be positive, got %s", cfg.UpdateInterval)
	}
	if cfg.ExpirationInterval <= 0 {
		return fmt.Errorf("expiration_interval must be positive, got %s", cfg.ExpirationInterval)
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %s", cfg.SweepInterval)
	}
	if cfg.RemovalInterval <= cfg.ExpirationInterval {
		return fmt.Errorf("removal_interval (%s) must be longer than expiration_interval (%s)", cfg.RemovalInterval, cfg.ExpirationInterval)
	}
	return nil
}

func SimConfigValidator(cfg *SimCfg) error {
	err := RouterConfigValidator(&cfg.RouterCfg)
	if err != nil {
		return err
	}
	if cfg.MaxRouters <= 0 || cfg.MaxRouters > 254 {
		return fmt.Errorf("max_routers must be between 1 and 254, got %d", cfg.MaxRouters)
	}
	if cfg.Routers < 0 || cfg.Routers > cfg.MaxRouters {
		return fmt.Errorf("routers must be between 0 and max_routers (%d), got %d", cfg.MaxRouters, cfg.Routers)
	}
	if cfg.BasePort == 0 || int(cfg.BasePort)+cfg.MaxRouters > math.MaxUint16 {
		return fmt.Errorf("base_port %d cannot hold %d routers", cfg.BasePort, cfg.MaxRouters)
	}
	if cfg.StartDelay < 0 {
		return fmt.Errorf("start_delay must not be negative")
	}
	_, err = ParseIP(fmt.Sprintf("%s%d", cfg.IpPrefix, cfg.MaxRouters))
	if err != nil {
		return fmt.Errorf("ip_prefix %q does not form IPv4 addresses: %w", cfg.IpPrefix, err)
	}
	return nil
}
