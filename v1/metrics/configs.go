package metrics

import "os"

// Config contains the settings for the metrics server.
type Config struct {
	// Address is the listen address for the /metrics endpoint, e.g. ":9090".
	Address string

	// ServiceName is added as a constant `service` label to every metric.
	ServiceName string

	// EnableDefaultCollectors registers the Go, process and build info
	// collectors in addition to the vector store metrics.
	EnableDefaultCollectors bool
}

// NewConfig reads the metrics configuration from environment variables.
func NewConfig() Config {
	addr := os.Getenv("METRICS_ADDRESS")
	if addr == "" {
		addr = ":9090"
	}
	return Config{
		Address:                 addr,
		ServiceName:             os.Getenv("METRICS_SERVICE_NAME"),
		EnableDefaultCollectors: os.Getenv("METRICS_DISABLE_DEFAULT_COLLECTORS") == "",
	}
}
