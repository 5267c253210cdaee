// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for docqa.
//
// # Configuration Precedence
//
// Configuration is resolved from (highest first):
//   - Environment variables (DOCQA_*)
//   - A .env file in the working directory
//   - ~/.docqa/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := backend.NewClientWithConfig(&backend.ClientConfig{
//	    BaseURL: cfg.Backend.URL,
//	    Timeout: cfg.Timeout(),
//	})
package config
