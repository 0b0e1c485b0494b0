// Package config loads dispatch profiles from YAML, JSON or TOML files.
//
// A profile names a target service: its endpoint, default headers, Accept
// type and whether writes are fired and forgotten.
//
//	variables:
//	  host: https://api.example.com
//	profiles:
//	  posts:
//	    endpoint: "{{host}}/v1"
//	    headers:
//	      auth-token: "123"
//	  events:
//	    endpoint: http://collector.internal:8080
//	    fireAndForget: true
//	    connectTimeout: 200ms
//
// Basic Usage:
//
//	cfg, err := config.LoadConfig("restservice.yaml")
//	if err != nil {
//	    return err
//	}
//	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
//	    return errs[0]
//	}
//	opts, err := cfg.Options("posts")
package config
