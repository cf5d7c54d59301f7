// Package configs provides embedded configuration templates for hippo.
//
// How Configuration Templates Work:
//
// Templates are embedded at build time using Go's //go:embed directive.
// This ensures they are available in ALL distributions:
//   - Source builds (go install)
//   - Binary releases
//   - Homebrew installations
//
// The templates are used by:
//   - cmd/hippo/cmd/init.go → creates .hippo.yaml in the project root
//   - cmd/hippo/cmd/config.go → creates user config at ~/.config/hippo/config.yaml
//
// Template files:
//   - project-config.example.yaml: per-project search/performance overrides
//   - user-config.example.yaml: machine-wide settings (data dir, embeddings, scheduler)
//
// Configuration Hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config/config.go NewConfig())
//  2. User config (~/.config/hippo/config.yaml)
//  3. Project config (.hippo.yaml)
//  4. Environment variables (HIPPO_*)
//
// To modify templates, edit the .yaml files in this directory and rebuild.
package configs

import _ "embed"

// UserConfigTemplate is the template for user/machine-level configuration.
// Created by: `hippo config init` at ~/.config/hippo/config.yaml
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for project-level configuration.
// Created by: `hippo init` at .hippo.yaml in the project root
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
