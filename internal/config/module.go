package config

import "go.uber.org/fx"

// Module provides *Config read from flags, the environment and .env.
var Module = fx.Provide(Load)
