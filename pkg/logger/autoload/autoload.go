// Package autoload initializes the global logger from environment variables
// when imported for side effect.
package autoload

import (
	configx "github.com/seaharbor/procure-agent/pkg/config"
	logx "github.com/seaharbor/procure-agent/pkg/logger"
)

func init() {
	conf := configx.MustNew[logx.Config]("LOG")
	logx.Init(*conf)
}
