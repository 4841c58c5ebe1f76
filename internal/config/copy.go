package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Copy is the runtime-editable UI copy deck: every user-facing string the
// conversation surface needs. It lives in a YAML file so deployments can
// retune wording without a rebuild; a missing file means defaults.
type Copy struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Greeting    string   `yaml:"greeting"`
	TermsText   string   `yaml:"terms_text"`
	Starters    []string `yaml:"starters"`
	Language    string   `yaml:"language"`
}

func DefaultCopy() Copy {
	return Copy{
		Title:       "Guided Support",
		Description: "You help users through a regulated support workflow step by step.",
		Greeting:    "Hello! Pick one of the options below and I will guide you from there.",
		TermsText:   "",
		Starters: []string{
			"I have a question about my account",
			"I want to report a problem",
			"Something else",
		},
		Language: "English",
	}
}

// LoadCopy reads the copy deck at path, filling unset keys from the
// defaults. An empty path or a missing file yields the defaults.
func LoadCopy(path string) (Copy, error) {
	c := DefaultCopy()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return Copy{}, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Copy{}, fmt.Errorf("parse copy deck: %w", err)
	}
	if c.Greeting == "" {
		c.Greeting = DefaultCopy().Greeting
	}
	if c.Language == "" {
		c.Language = DefaultCopy().Language
	}
	return c, nil
}
