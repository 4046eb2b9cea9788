package config

import (
	"bytes"
	"fmt"
	"os"

	"bennypowers.dev/dtsc/internal/log"
	"gopkg.in/yaml.v3"
)

// comments document each top-level key of the written default file
var comments = map[string]string{
	"sources":    "Glob patterns (doublestar syntax) of stylesheets to compile.\nFiles whose name starts with \"_\" are partials and are never compiled.",
	"out_dir":    "Directory compiled CSS is written to, mirroring each pattern's base.",
	"style":      "Output style: expanded or compressed.",
	"load_paths": "Extra directories searched by @import.",
	"tokens":     "Design token files (.json or .yaml). Token color.primary with\nprefix \"ds\" is available as $ds-color-primary.",
	"variables":  "Variables available to every stylesheet. Stylesheets may shadow them.",
	"validate":   "Re-parse compiled CSS and report problems as warnings.",
	"strict":     "Treat validation problems as errors.",
	"watch":      "Delay before rebuilding after a change.",
	"log_level":  "debug, info, warn or error.",
}

// DefaultConfigYAML renders Defaults as YAML with a comment on each key
func DefaultConfigYAML() ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(Defaults()); err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	doc.HeadComment = "dtsc configuration"

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		if c, ok := comments[key.Value]; ok {
			key.HeadComment = c
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()
	return buf.Bytes(), nil
}

// WriteDefaultConfig creates a config file at path with default settings
// and comments. An existing file is left alone unless force is set.
func WriteDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := DefaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info("created %s", path)
	return nil
}
