package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	var b strings.Builder
	b.WriteString("# mdhistory configuration (TOML)\n")

	top, sections, order := groupOptions(GetConfigOptions())
	for _, o := range top {
		b.WriteString(strings.Join(optionLines(o.Key, o), "\n") + "\n")
	}
	for _, section := range order {
		b.WriteString("[" + section + "]\n")
		for _, o := range sections[section] {
			b.WriteString(strings.Join(optionLines(leaf(o.Key), o), "\n") + "\n")
		}
	}
	return b.String()
}

// TOMLUpdate is the result of merging the option table into an existing
// config file.
type TOMLUpdate struct {
	Content string
	// Added lists option keys that were missing and now carry defaults.
	Added []string
	// Outdated lists keys that were commented out as no longer known.
	Outdated []string
}

// Changed reports whether Content differs from the input.
func (u TOMLUpdate) Changed() bool {
	return len(u.Added) > 0 || len(u.Outdated) > 0
}

// UpdateTOML appends missing options to an existing config and comments out
// keys that are no longer part of the schema.
func UpdateTOML(existing string) TOMLUpdate {
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	seen := make(map[string]bool)
	headerAt := make(map[string]int) // section -> index of its header in out
	section := ""
	var res TOMLUpdate
	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		switch {
		case trim == "" || strings.HasPrefix(trim, "#"):
			out = append(out, line)
			continue
		case strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]"):
			section = strings.TrimSpace(trim[1 : len(trim)-1])
			headerAt[section] = len(out)
			out = append(out, line)
			continue
		}
		key, ok := parseTOMLKey(trim)
		if !ok {
			out = append(out, line)
			continue
		}
		if section != "" {
			key = section + "." + key
		}
		seen[key] = true
		if !known[key] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema", indent+"# "+trim)
			res.Outdated = append(res.Outdated, key)
			continue
		}
		out = append(out, line)
	}

	var missing []ConfigOption
	for _, o := range GetConfigOptions() {
		if !seen[o.Key] {
			missing = append(missing, o)
			res.Added = append(res.Added, o.Key)
		}
	}
	if len(missing) == 0 {
		res.Content = strings.Join(out, "\n")
		return res
	}

	top, sections, order := groupOptions(missing)

	// Keys of sections already present go directly under their header;
	// TOML forbids declaring a table twice. Insert bottom-up so earlier
	// header indexes stay valid.
	existingSections := make([]string, 0, len(order))
	newSections := make([]string, 0, len(order))
	for _, s := range order {
		if _, ok := headerAt[s]; ok {
			existingSections = append(existingSections, s)
		} else {
			newSections = append(newSections, s)
		}
	}
	sort.Slice(existingSections, func(i, j int) bool {
		return headerAt[existingSections[i]] > headerAt[existingSections[j]]
	})
	for _, s := range existingSections {
		var add []string
		for _, o := range sections[s] {
			add = append(add, optionLines(leaf(o.Key), o)...)
		}
		at := headerAt[s] + 1
		out = append(out[:at], append(add, out[at:]...)...)
	}

	// Top-level keys must precede the first table header.
	if len(top) > 0 {
		var add []string
		for _, o := range top {
			add = append(add, optionLines(o.Key, o)...)
		}
		at := firstHeader(out)
		out = append(out[:at], append(add, out[at:]...)...)
	}

	if len(newSections) > 0 {
		out = append(out, "", "# Added by config update")
		for _, s := range newSections {
			out = append(out, "["+s+"]")
			for _, o := range sections[s] {
				out = append(out, optionLines(leaf(o.Key), o)...)
			}
		}
	}
	res.Content = strings.Join(out, "\n")
	return res
}

// ValidateTOML parses content over the defaults and runs
// CheckConfigValidity on the result.
func ValidateTOML(content string) error {
	v := viper.New()
	v.SetConfigType("toml")
	applyDefaults(v)
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return CheckConfigValidity(v)
}

func firstHeader(lines []string) int {
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
			return i
		}
	}
	return len(lines)
}

func groupOptions(opts []ConfigOption) (top []ConfigOption, sections map[string][]ConfigOption, order []string) {
	sections = make(map[string][]ConfigOption)
	for _, o := range opts {
		i := strings.Index(o.Key, ".")
		if i < 0 {
			top = append(top, o)
			continue
		}
		s := o.Key[:i]
		if _, ok := sections[s]; !ok {
			order = append(order, s)
		}
		sections[s] = append(sections[s], o)
	}
	return top, sections, order
}

func leaf(key string) string {
	if i := strings.Index(key, "."); i >= 0 {
		return key[i+1:]
	}
	return key
}

func optionLines(key string, o ConfigOption) []string {
	var lines []string
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	return append(lines, key+" = "+tomlValue(o.Default), "")
}

func tomlValue(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}
