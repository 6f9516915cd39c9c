// Package config provides configuration parsing for hxstate.
//
// The configuration is stored in hxstate.json or hxstate.yaml in the working
// directory. Every field is optional.
//
// # Configuration File Structure
//
//	{
//	  "attrs": {"state": "hx-state", "bind": "hx-bind", "effect": "hx-effect"},
//	  "effects": {"engine": "expr", "timeout": "100ms", "policy": "abort"},
//	  "server": {"addr": "localhost:8080", "document": "s3://pages/index.html"},
//	  "metrics": {"enabled": true, "path": "/metrics"},
//	  "log": {"level": "info", "format": "text"},
//	  "source": {"maxBytes": 8388608, "s3": {"region": "eu-west-1"}}
//	}
//
// # Usage
//
//	cfg, err := config.LoadOptional(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
