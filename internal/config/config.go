// Package config defines the CLI surface: flags, environment variables and
// the subcommand tree, all declared via kong tags.
package config

import "github.com/rmikit/rmitouch/internal/cmd"

// LogConfig holds the logging flags shared by all commands.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"RMITOUCH_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of stdout/stderr" env:"RMITOUCH_LOG_FILE"`
	RawFile string `help:"Mirror raw register traffic to this file" env:"RMITOUCH_LOG_RAW_FILE"`
}

// CLI is the root command structure parsed by kong.
type CLI struct {
	ConfigFile string    `name:"config" help:"Path to a configuration file" env:"RMITOUCH_CONFIG"`
	Log        LogConfig `embed:"" prefix:"log."`

	Run       cmd.Run           `cmd:"" help:"Attach to the touchpad and serve multitouch input"`
	Probe     cmd.Probe         `cmd:"" help:"Print the device function table and touch capabilities"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file utilities"`
}
