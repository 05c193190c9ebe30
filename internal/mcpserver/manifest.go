package mcpserver

import (
	"encoding/json"
	"strings"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	registryName   = "io.github.panbanda/tangle"
	imageName      = "ghcr.io/panbanda/tangle"
	sourceURL      = "https://github.com/panbanda/tangle"
)

// Manifest is the registry server.json document.
type Manifest struct {
	Schema      string      `json:"$schema"`
	Name        string      `json:"name"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description"`
	Version     string      `json:"version"`
	Repository  *Repository `json:"repository,omitempty"`
	Packages    []Package   `json:"packages,omitempty"`
}

type Repository struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Package is one way to launch the server. Arguments come after the image
// or binary name.
type Package struct {
	RegistryType     string     `json:"registryType"`
	Identifier       string     `json:"identifier"`
	Version          string     `json:"version,omitempty"`
	RuntimeHint      string     `json:"runtimeHint,omitempty"`
	PackageArguments []Argument `json:"packageArguments,omitempty"`
	Transport        Transport  `json:"transport"`
}

type Argument struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type Transport struct {
	Type string `json:"type"`
}

// NewManifest describes the stdio server published as an OCI image. A
// leading "v" is stripped from version; empty means 0.0.0.
func NewManifest(version string) Manifest {
	version = strings.TrimPrefix(version, "v")
	if version == "" || version == "dev" {
		version = "0.0.0"
	}
	return Manifest{
		Schema:      manifestSchema,
		Name:        registryName,
		Title:       "tangle",
		Description: "Dead-code and import-graph analysis for TypeScript and JavaScript projects",
		Version:     version,
		Repository:  &Repository{URL: sourceURL, Source: "github"},
		Packages: []Package{{
			RegistryType:     "oci",
			Identifier:       imageName + ":" + version,
			RuntimeHint:      "docker",
			PackageArguments: []Argument{{Type: "positional", Value: "mcp"}},
			Transport:        Transport{Type: "stdio"},
		}},
	}
}

// GenerateManifest renders NewManifest as indented JSON.
func GenerateManifest(version string) ([]byte, error) {
	return json.MarshalIndent(NewManifest(version), "", "  ")
}
