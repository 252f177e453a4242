// Package config provides configuration parsing for resumeup.
//
// The configuration is stored in resumeup.json at the project root.
// This package handles loading, saving, validating and applying
// environment overrides.
//
// # Configuration File Structure
//
//	{
//	  "server": "http://localhost:8000",
//	  "timeout": "30s",
//	  "upload": {
//	    "endpoint": "/upload_resume",
//	    "resultsPath": "/results",
//	    "formId": "resumeForm",
//	    "inputId": "resumeFile",
//	    "silentTransportErrors": false
//	  },
//	  "messages": {
//	    "noFile": "Please select a file!",
//	    "uploadFailed": "Upload failed!"
//	  },
//	  "metrics": { "namespace": "resumeup" },
//	  "tracing": { "tracerName": "resumeup" },
//	  "s3": { "region": "us-east-1" }
//	}
//
// # Environment
//
// RESUMEUP_SERVER and RESUMEUP_TIMEOUT override the file.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	h := upload.New(input, transport, upload.WithConfig(cfg.UploadConfig()))
package config
