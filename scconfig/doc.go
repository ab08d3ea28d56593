// Package scconfig loads a scconn.ContextConfig from a YAML file plus
// BACNET_SC_* environment overrides, layered default -> file -> env, and
// reports failures as the structured *api.Error this module uses uniformly.
package scconfig
