package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the JSON path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator checks the structure of a router configuration. Per-component
// problems such as an unknown handler type or an incomplete transport are
// left to the builder and connection manager, which render only that
// component inert.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *RouterConfig) ValidationErrors {
	v.errors = nil

	v.validateHandlers(config)
	v.validateConnections(config)
	v.validateConnect(config)
	v.validateAgents(config)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateHandlers(config *RouterConfig) {
	if len(config.Handlers) == 0 {
		v.addError("handlers", "at least one handler is required")
		return
	}

	seen := make(map[string]int)
	for i, h := range config.Handlers {
		path := fmt.Sprintf("handlers[%d]", i)
		if strings.TrimSpace(h.Type) == "" {
			v.addError(path+".type", "type is required")
			continue
		}
		name := h.DisplayName()
		if prev, ok := seen[name]; ok {
			v.addError(path+".name", fmt.Sprintf("duplicate handler name %q (also handlers[%d])", name, prev))
			continue
		}
		seen[name] = i

		for j, pattern := range h.Models {
			if strings.TrimSpace(pattern) == "" {
				v.addError(fmt.Sprintf("%s.models[%d]", path, j), "pattern cannot be empty")
			}
		}
		if h.Timeout < 0 {
			v.addError(path+".timeout", "timeout cannot be negative")
		}
	}
}

func (v *Validator) validateConnections(config *RouterConfig) {
	seen := make(map[string]int)
	for i, c := range config.Connections {
		path := fmt.Sprintf("connections[%d]", i)
		if strings.TrimSpace(c.Name) == "" {
			v.addError(path+".name", "name is required")
			continue
		}
		if prev, ok := seen[c.Name]; ok {
			v.addError(path+".name", fmt.Sprintf("duplicate connection name %q (also connections[%d])", c.Name, prev))
			continue
		}
		seen[c.Name] = i
	}
}

func (v *Validator) validateConnect(config *RouterConfig) {
	if config.Connect.Timeout < 0 {
		v.addError("connect.timeout", "timeout cannot be negative")
	}
	if config.Connect.MaxConcurrent < 0 {
		v.addError("connect.max_concurrent", "max_concurrent cannot be negative")
	}
}

func (v *Validator) validateAgents(config *RouterConfig) {
	seen := make(map[string]bool)
	for i, a := range config.Agents {
		path := fmt.Sprintf("agents[%d]", i)
		if a.Name == "" {
			v.addError(path+".name", "name is required")
		} else if seen[a.Name] {
			v.addError(path+".name", fmt.Sprintf("duplicate agent name %q", a.Name))
		}
		seen[a.Name] = true
		if a.Model == "" {
			v.addError(path+".model", "model is required")
		}
	}
}
