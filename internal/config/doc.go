// Package config provides configuration parsing for kinesis.
//
// The configuration is stored in kinesis.json (or kinesis.yaml) next to the
// binary's working directory. This package handles loading, saving,
// defaulting and validating it, and builds the process logger and the
// snapshot store it describes.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 7070,
//	    "component": "counter",
//	    "allowedOrigins": ["https://example.com"],
//	    "writeTimeout": "10s"
//	  },
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "kinesis"
//	  },
//	  "snapshot": {
//	    "backend": "s3",
//	    "s3": {
//	      "bucket": "snapshots",
//	      "endpoint": "http://localhost:9000",
//	      "pathStyle": true
//	    }
//	  }
//	}
//
// The YAML form uses the same keys.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
