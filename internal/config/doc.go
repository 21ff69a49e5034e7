// Package config provides configuration management for botctl.
//
// Configuration is loaded and merged in the following order, later sources
// overriding earlier ones:
//
//  1. Default Configuration (embedded in binary)
//  2. User Configuration (~/.config/botctl/config.yaml)
//  3. Project Configuration (./.botctl/config.yaml)
//
// A single file can be used instead of the layers with LoadConfigFromPath.
//
// # Configuration Structure
//
//	server:
//	  host: localhost
//	  port: 3001
//	mcp:
//	  enabled: true
//	  host: localhost
//	  port: 3002
//	logs:
//	  dir: logs          # per-tool stderr logs are appended here
//	lockDir: ""          # per-tool lock files; defaults to $TMPDIR/botctl-locks
//	shell: /bin/sh       # commands run as `shell -c <command>`
//	workDir: ""          # child working directory; empty inherits botctl's
//	env:                 # appended to the inherited environment
//	  PYTHONUNBUFFERED: "1"
//	stop:
//	  signal: SIGTERM
//	  killAfter: 0s      # 0 disables the forced kill after stop
//	output:
//	  maxBytes: 65536    # stdout kept per run
//	tools:
//	  - kind: llm-bot
//	    logFile: error_log.txt
//
// Tool kinds are fixed; the tools section only overrides per-kind settings.
package config
