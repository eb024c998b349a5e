package allowlist

import "fmt"

// ConfigurationError reports a resource declaration that cannot be registered. It is only
// produced while building a Registry, never while compiling a request.
type ConfigurationError struct {
	Resource string
	Key      string
	msg      string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("resource '%s': %s", e.Resource, e.msg)
	}
	return fmt.Sprintf("resource '%s', key '%s': %s", e.Resource, e.Key, e.msg)
}

func NewConfigurationError(resource, key, text string) error {
	return &ConfigurationError{Resource: resource, Key: key, msg: text}
}
