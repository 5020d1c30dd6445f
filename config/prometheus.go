package config

// PrometheusConfig exposes the metrics registry over HTTP.
type PrometheusConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

func (c *PrometheusConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":2112"
	}
}
