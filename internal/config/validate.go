package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

func Validate(cfg Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Paths.MasterFile) == "" {
		errs = append(errs, "paths.master_file is required")
	}

	checkSource := func(name string, s Source) {
		if !s.Enabled {
			return
		}
		if strings.TrimSpace(s.Dir) == "" {
			errs = append(errs, fmt.Sprintf("sources.%s.dir is required when enabled", name))
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			errs = append(errs, fmt.Sprintf("sources.%s.pattern is not a valid regexp: %v", name, err))
			return
		}
		if re.NumSubexp() < 3 {
			errs = append(errs, fmt.Sprintf("sources.%s.pattern must capture day, month and year", name))
		}
	}
	checkSource("joe", cfg.Sources.JOE)
	checkSource("ejm", cfg.Sources.EJM)

	for i, c := range cfg.Filters.ExcludedCountries {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, fmt.Sprintf("filters.excluded_countries[%d] cannot be empty", i))
		}
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + joinLines(errs))
	}
	return nil
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n- ")
}
