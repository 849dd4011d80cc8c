package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigEnv overrides the default config file location.
const ConfigEnv = "DESKWM_CONFIG"

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

type Source struct {
	Kind   SourceKind
	Name   string // for default
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML-path -> last writer source (file only)
	Files   []string          // all loaded files, in load order
}

// DefaultConfigPath returns $DESKWM_CONFIG or ~/.config/deskwm/config.yaml.
func DefaultConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv(ConfigEnv)); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "deskwm", "config.yaml"), nil
}

// Load reads the merged configuration from the standard location and returns an
// effective config ready for use by the daemon.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns file-level sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields the
// defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := newLoader()
	raw := RawConfig{}

	exists, err := pathExists(path)
	if err != nil {
		return nil, err
	}
	if exists {
		if raw, err = l.load(path, nil); err != nil {
			return nil, err
		}
	}

	cfg := BuildEffectiveConfig(raw)
	if err := l.resolveThemeFile(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, l.withSource(err)
	}
	return &LoadResult{
		Config:  cfg,
		Sources: l.sources,
		Files:   l.files,
	}, nil
}

// loader merges one config file tree. Includes apply before the file that
// names them, in listed order; a file reached twice is read once.
type loader struct {
	seen    map[string]bool
	sources map[string]Source
	files   []string
}

func newLoader() *loader {
	return &loader{
		seen:    make(map[string]bool),
		sources: make(map[string]Source),
	}
}

func (l *loader) load(path string, stack []string) (RawConfig, error) {
	canon, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, err
	}
	if slices.Contains(stack, canon) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(stack, " -> "), canon)
	}
	if l.seen[canon] {
		return RawConfig{}, nil
	}
	l.seen[canon] = true

	data, err := os.ReadFile(canon)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", canon, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}
	var own RawConfig
	if err := decodeStrict(data, &own); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", canon, err)
	}

	root := rootMapping(&doc)
	merged := RawConfig{}
	for _, ref := range includeRefs(root, canon) {
		paths, err := expandInclude(canon, ref.value)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s: include %q: %w", ref.source.position(), ref.value, err)
		}
		for _, inc := range paths {
			incRaw, err := l.load(inc, append(stack, canon))
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(incRaw)
		}
	}

	// The including file wins over everything it includes.
	recordSources(root, canon, "", l.sources)
	l.files = append(l.files, canon)
	return merged.merge(own), nil
}

// resolveThemeFile makes theme_file relative to the file that set it.
func (l *loader) resolveThemeFile(cfg *Config) error {
	if cfg.ThemeFile == "" {
		return nil
	}
	src, ok := l.sources["theme_file"]
	if !ok || src.File == "" {
		return nil
	}
	resolved, err := resolvePath(src.File, cfg.ThemeFile)
	if err != nil {
		return l.withSource(&ValidationError{Path: "theme_file", Err: err})
	}
	cfg.ThemeFile = resolved
	return nil
}

// withSource attaches the file position of a validation error's key.
func (l *loader) withSource(err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := l.sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// expandInclude turns one include entry into files: a file as is, a
// directory as its *.yaml/*.yml files, a glob as its sorted matches.
func expandInclude(baseFile, include string) ([]string, error) {
	path, err := resolvePath(baseFile, include)
	if err != nil {
		return nil, err
	}

	if strings.ContainsAny(path, "*?[") {
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %s", path)
		}
		sort.Strings(matches)
		return matches, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() || !isYAMLName(ent.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, ent.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func isYAMLName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// resolvePath expands a leading ~ and joins relative paths onto the
// directory of baseFile.
func resolvePath(baseFile, p string) (string, error) {
	if p == "" {
		return "", errors.New("path is empty")
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Join(filepath.Dir(baseFile), p), nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func rootMapping(doc *yaml.Node) *yaml.Node {
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

// recordSources stores the position of every key under prefix as a dotted
// path. Sequence items are recorded by index, so startup_windows.1.flags
// names the second window's flags.
func recordSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node == nil {
		return
	}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, node.Content[i+1]
			if prefix == "" && key == "include" {
				continue
			}
			path := joinPath(prefix, key)
			out[path] = fileSource(file, val)
			recordSources(val, file, path, out)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			path := joinPath(prefix, strconv.Itoa(i))
			out[path] = fileSource(file, item)
			recordSources(item, file, path, out)
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func fileSource(file string, node *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: node.Line, Column: node.Column}
}

// position formats a file source as file:line:col.
func (s Source) position() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

type includeRef struct {
	value  string
	source Source
}

// includeRefs reads the top-level include key, a string or a list.
func includeRefs(root *yaml.Node, file string) []includeRef {
	if root == nil {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		items := []*yaml.Node{val}
		if val.Kind == yaml.SequenceNode {
			items = val.Content
		}
		var refs []includeRef
		for _, item := range items {
			if item.Kind == yaml.ScalarNode {
				refs = append(refs, includeRef{value: item.Value, source: fileSource(file, item)})
			}
		}
		return refs
	}
	return nil
}
