// Package autoload configures the global logger from the environment on
// import. Blank-import it from main before any logging happens.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/wearly/concierge/pkg/logger"
)

func init() {
	var conf logx.Config
	if err := envconfig.Process("LOG", &conf); err != nil {
		conf = *logx.DefaultConfig
	}
	logx.Init(conf)
}
