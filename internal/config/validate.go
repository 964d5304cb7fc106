package config

import (
	"errors"
	"fmt"
)

// Validate 检查已设置字段的取值范围。
func (c Config) Validate() error {
	var errs []error

	if c.Output != nil {
		switch *c.Output {
		case OutputConsole, OutputFile, OutputJSON:
		default:
			errs = append(errs, fmt.Errorf("unsupported output %q, allowed values: console, file, json", *c.Output))
		}
	}
	if c.Color != nil {
		switch *c.Color {
		case "", "auto", "always", "never":
		default:
			errs = append(errs, fmt.Errorf("unsupported color mode %q, allowed values: auto, always, never", *c.Color))
		}
	}
	if c.Workers != nil && *c.Workers <= 0 {
		errs = append(errs, errors.New("workers must be greater than 0"))
	}

	return errors.Join(errs...)
}
