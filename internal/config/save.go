package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a cleaned copy (trimmed, lower-cased,
// de-duplicated exclusion list) together with what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Filters.ExcludedCountries = trimList(out.Filters.ExcludedCountries)
	out.Paths.MasterFile = strings.TrimSpace(out.Paths.MasterFile)
	out.Paths.HistoryDB = strings.TrimSpace(out.Paths.HistoryDB)

	if err := Validate(out); err != nil {
		res.addErr("%v", err)
	}

	if !out.Sources.JOE.Enabled && !out.Sources.EJM.Enabled {
		res.addWarn("no sources enabled; runs will not touch the master file")
	}
	if out.Paths.HistoryDB == "" {
		res.addWarn("paths.history_db is empty; runs will not be recorded")
	}
	if len(out.Filters.ExcludedCountries) == 0 {
		res.addWarn("filters.excluded_countries is empty; only missing EJM countries will be excluded")
	}
	if out.Sources.JOE.Enabled && out.Sources.EJM.Enabled && out.Sources.JOE.Dir == out.Sources.EJM.Dir {
		res.addWarn("joe and ejm read the same directory: %q", out.Sources.JOE.Dir)
	}

	return out, res
}

// SaveAtomic validates cfg and replaces the file at path with it. The file
// it replaces is kept as path.bak.
func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp.Name(), 0o644)

	if err := os.Rename(path, path+".bak"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("back up %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
