// CineCompass - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecompass

// Package config loads CineCompass configuration with Koanf.
//
// Sources are layered, later layers winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
//     /etc/cinecompass/config.yaml
//  3. Environment variables listed in envMappings, e.g. HTTP_PORT,
//     DUCKDB_PATH, RECOMMEND_UPDATE_THRESHOLD
//
// Unlisted environment variables are ignored. The merged result is checked
// by Config.Validate before it is returned.
//
// Example config.yaml:
//
//	server:
//	  port: 8484
//	database:
//	  path: /data/cinecompass.duckdb
//	recommend:
//	  update_threshold: 4h
//	  recompute_mode: async
//	events:
//	  backend: embedded
package config
