//go:build generate
// +build generate

// Package main provides the central entry point for all code generation in this project.
//
// It renders the OpenAPI document synthesized from the registered resources into
// docs/openapi.yaml and docs/openapi.json.
//
// Usage:
//   go generate -tags generate ./...
package main

//go:generate go run ./cmd/schemagen openapi -o yaml --file docs/openapi.yaml
//go:generate go run ./cmd/schemagen openapi -o json --file docs/openapi.json
