package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/Knetic/govaluate"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their YAML names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateConfig performs comprehensive validation of the entire ETL configuration.
// All problems are collected into a single error, one "- Field: message" line each.
func ValidateConfig(cfg *ETLConfig) error {
	if cfg == nil {
		return errors.New("configuration validation failed:\n- Config: configuration is nil")
	}
	var allErrors []string

	if err := newValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		for _, fe := range verrs {
			allErrors = append(allErrors, formatFieldError(fe))
		}
	}

	allErrors = append(allErrors, validateDelimiter("Config.source.delimiter", cfg.Source.Type, cfg.Source.Delimiter)...)
	allErrors = append(allErrors, validateDelimiter("Config.destination.delimiter", cfg.Destination.Type, cfg.Destination.Delimiter)...)
	if cfg.Source.CommentChar != "" {
		if utf8.RuneCountInString(cfg.Source.CommentChar) != 1 {
			allErrors = append(allErrors, fmt.Sprintf("- Config.source.commentChar: must be a single character, got '%s'", cfg.Source.CommentChar))
		} else if cfg.Source.CommentChar == cfg.Source.Delimiter {
			allErrors = append(allErrors, "- Config.source.commentChar: must differ from the delimiter")
		}
	}

	if cfg.Transform.Expression != "" {
		if _, err := govaluate.NewEvaluableExpression(cfg.Transform.Expression); err != nil {
			allErrors = append(allErrors, fmt.Sprintf("- Config.transform.expression: invalid expression syntax: %v", err))
		}
	}
	if cfg.Transform.Filter != "" {
		if _, err := govaluate.NewEvaluableExpression(cfg.Transform.Filter); err != nil {
			allErrors = append(allErrors, fmt.Sprintf("- Config.transform.filter: invalid expression syntax: %v", err))
		}
	}
	seen := make(map[string]bool, len(cfg.Transform.DedupKeys))
	for i, k := range cfg.Transform.DedupKeys {
		if k != "" && seen[k] {
			allErrors = append(allErrors, fmt.Sprintf("- Config.transform.dedupKeys[%d]: duplicate key column '%s'", i, k))
		}
		seen[k] = true
	}

	if cfg.Mirror != nil && cfg.Mirror.Table != "" {
		for _, part := range strings.Split(cfg.Mirror.Table, ".") {
			if strings.TrimSpace(part) == "" {
				allErrors = append(allErrors, fmt.Sprintf("- Config.mirror.table: invalid table identifier '%s'", cfg.Mirror.Table))
				break
			}
		}
	}

	if len(allErrors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(allErrors, "\n"))
	}
	return nil
}

// formatFieldError renders one validator failure in the "- Field: message" form.
func formatFieldError(fe validator.FieldError) string {
	field := strings.Replace(fe.Namespace(), "ETLConfig.", "Config.", 1)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("- %s: is required", field)
	case "oneof":
		return fmt.Sprintf("- %s: invalid value '%v', must be one of [%s]", field, fe.Value(), fe.Param())
	case "min":
		return fmt.Sprintf("- %s: must have at least %s entries", field, fe.Param())
	default:
		return fmt.Sprintf("- %s: failed '%s' validation", field, fe.Tag())
	}
}

// validateDelimiter checks a CSV delimiter. Other formats ignore it.
func validateDelimiter(field, format, delim string) []string {
	if format != FormatCSV {
		return nil
	}
	if utf8.RuneCountInString(delim) != 1 {
		return []string{fmt.Sprintf("- %s: must be a single character, got '%s'", field, delim)}
	}
	r, _ := utf8.DecodeRuneInString(delim)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return []string{fmt.Sprintf("- %s: invalid delimiter %q", field, delim)}
	}
	return nil
}
