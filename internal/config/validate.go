package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/raphi011/tfsync/internal/projectpath"
)

// ValidationError reports an invalid configuration field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error // underlying cause, if any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Valid enum values for configuration fields and flags.
var ValidFormats = []string{"table", "json", "yaml"}

var (
	userAtDomain    = regexp.MustCompile(`^\w+@\w+$`)
	domainSlashUser = regexp.MustCompile(`^\w+\\\w+$`)
)

// ValidateFormat validates an output format against ValidFormats.
// Exported for use in CLI flag validation.
func ValidateFormat(f string) error {
	return validateEnum(f, "format", ValidFormats)
}

// ValidateUsername checks that name, if set, is DOMAIN\user or user@domain.
func ValidateUsername(name string) error {
	if name == "" || userAtDomain.MatchString(name) || domainSlashUser.MatchString(name) {
		return nil
	}
	return fmt.Errorf("%q must be DOMAIN\\user or user@domain", name)
}

// Validate checks the tool settings and every job.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TFExecutable) == "" {
		return &ValidationError{Field: "tf_executable", Reason: "must not be empty"}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for _, name := range c.JobNames() {
		if err := c.Jobs[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the fields of one job.
func (j Job) Validate() error {
	field := func(f string) string { return "jobs." + j.Name + "." + f }

	if strings.TrimSpace(j.ServerURL) == "" {
		return &ValidationError{Field: field("server_url"), Reason: "is required"}
	}
	if strings.TrimSpace(j.ProjectPath) == "" {
		return &ValidationError{Field: field("project_path"), Reason: "is required"}
	}
	if err := projectpath.Validate(j.ProjectPath); err != nil {
		return &ValidationError{Field: field("project_path"), Reason: strings.TrimPrefix(err.Error(), projectpath.ErrInvalidSpec.Error()+": "), Err: err}
	}
	if err := projectpath.ValidateLocal(j.LocalPath); j.LocalPath != "" && err != nil {
		return &ValidationError{Field: field("local_path"), Reason: strings.TrimPrefix(err.Error(), projectpath.ErrInvalidSpec.Error()+": "), Err: err}
	}
	if err := ValidateUsername(j.Username); err != nil {
		return &ValidationError{Field: field("username"), Reason: err.Error()}
	}
	if j.PasswordEnv != "" && j.Username == "" {
		return &ValidationError{Field: field("password_env"), Reason: "requires username"}
	}
	return nil
}

// IsValidationError reports whether err is a configuration problem.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, projectpath.ErrInvalidSpec)
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("%q must be %s", value, formatOptions(allowed))}
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
