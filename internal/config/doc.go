// Package config provides configuration structures and utilities for urlguard.
// It defines the model location, input limits, batch settings, history
// storage and report preferences, and loads them from the optional .urlguard
// YAML file.
package config
