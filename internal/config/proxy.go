package config

import (
	pcfg "vane/source/restproxy"
)

// LoadProxyConfig delegates to the REST proxy loader while centralizing
// loader entrypoints under internal/config.
func LoadProxyConfig(path string) (pcfg.Config, error) {
	return pcfg.LoadConfig(path)
}
