// Package config loads p4 connection settings from a YAML file, with
// fallbacks to the standard P4* environment variables, and can watch the
// file for changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sergeknystautas/p4go/pkg/p4"
)

var (
	ErrConfigNotFound = errors.New("p4 settings file not found")
	ErrInvalidConfig  = errors.New("invalid p4 settings")
)

// Settings mirrors the per-connection overrides of p4.Conn. Empty fields
// defer to whatever ambient configuration the p4 binary itself resolves.
type Settings struct {
	Binary   string `yaml:"binary,omitempty"`
	Port     string `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Client   string `yaml:"client,omitempty"`
	Charset  string `yaml:"charset,omitempty"`
	Retries  int    `yaml:"retries,omitempty"`
}

// Load reads settings from a YAML file and validates them.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// FromEnv builds settings from the standard P4PORT, P4USER, P4PASSWD,
// P4CLIENT and P4CHARSET variables.
func FromEnv() *Settings {
	return &Settings{
		Port:     os.Getenv("P4PORT"),
		User:     os.Getenv("P4USER"),
		Password: os.Getenv("P4PASSWD"),
		Client:   os.Getenv("P4CLIENT"),
		Charset:  os.Getenv("P4CHARSET"),
	}
}

// Validate checks the settings for values that would produce a broken
// argument vector.
func (s *Settings) Validate() error {
	if s.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative, got %d", ErrInvalidConfig, s.Retries)
	}
	for name, v := range map[string]string{
		"port":    s.Port,
		"user":    s.User,
		"client":  s.Client,
		"charset": s.Charset,
	} {
		if strings.ContainsAny(v, " \t\n") {
			return fmt.Errorf("%w: %s must not contain whitespace, got %q", ErrInvalidConfig, name, v)
		}
	}
	return nil
}

// Merge returns a copy of s with any non-zero field of over taking
// precedence. Zero-valued fields of over never override, so a layer cannot
// reset an earlier layer's retries back to zero. Typical layering:
// FromEnv().Merge(fileSettings), matching p4's own precedence of config file
// over environment.
func (s *Settings) Merge(over *Settings) *Settings {
	out := *s
	if over == nil {
		return &out
	}
	if over.Binary != "" {
		out.Binary = over.Binary
	}
	if over.Port != "" {
		out.Port = over.Port
	}
	if over.User != "" {
		out.User = over.User
	}
	if over.Password != "" {
		out.Password = over.Password
	}
	if over.Client != "" {
		out.Client = over.Client
	}
	if over.Charset != "" {
		out.Charset = over.Charset
	}
	if over.Retries != 0 {
		out.Retries = over.Retries
	}
	return &out
}

// Conn builds a connection from the settings.
func (s *Settings) Conn() *p4.Conn {
	conn := p4.New()
	conn.Binary = s.Binary
	conn.Port = s.Port
	conn.User = s.User
	conn.Password = s.Password
	conn.Client = s.Client
	if s.Charset != "" {
		conn.Charset = s.Charset
	}
	conn.Retries = s.Retries
	return conn
}
