// Package registry holds the static catalog of behavioral profiles that the
// classifier scores against. Profiles come from YAML files in the configured
// profile directories, falling back to the compiled-in default catalog when
// no files exist. The catalog is immutable once loaded.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"switchboard/internal/config"
	"switchboard/internal/logging"
)

// Signal is one weighted matching cue of a profile. Keyword signals match as
// case-insensitive substrings; regex signals match the raw text with whatever
// flags the pattern carries.
type Signal struct {
	Category string  `yaml:"category"`
	Pattern  string  `yaml:"pattern"`
	Weight   float64 `yaml:"weight"`
	Regex    bool    `yaml:"regex,omitempty"`

	re     *regexp.Regexp
	needle string
}

// compile validates the signal and precomputes its matcher.
func (s *Signal) compile() error {
	if s.Pattern == "" {
		return fmt.Errorf("signal has empty pattern")
	}
	if s.Weight <= 0 {
		return fmt.Errorf("signal %q has non-positive weight %v", s.Pattern, s.Weight)
	}
	if s.Category == "" {
		s.Category = "core"
	}
	if s.Regex {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return fmt.Errorf("signal %q: %w", s.Pattern, err)
		}
		s.re = re
		return nil
	}
	s.needle = strings.ToLower(s.Pattern)
	return nil
}

// Matches reports whether the signal fires on the given input. text is the
// raw request and lowered is its lowercase form; both are passed so that
// neither matcher pays for the other's preprocessing.
func (s *Signal) Matches(text, lowered string) bool {
	if s.re != nil {
		return s.re.MatchString(text)
	}
	return strings.Contains(lowered, s.needle)
}

// Profile describes one domain expert: identity, persona text, and the
// weighted signals that argue for activating it.
type Profile struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Signals     []Signal `yaml:"signals"`
}

func (p *Profile) compile() error {
	if p.ID == "" {
		return fmt.Errorf("profile has empty id")
	}
	if strings.ContainsAny(p.ID, " \t/\\") {
		return fmt.Errorf("profile id %q contains separators", p.ID)
	}
	for i := range p.Signals {
		if err := p.Signals[i].compile(); err != nil {
			return fmt.Errorf("profile %q: %w", p.ID, err)
		}
	}
	return nil
}

// SaturationMass returns the sum of the profile's depth strongest signal
// weights. Matching that much weight counts as full confidence; the scorer
// divides raw scores by it.
func (p *Profile) SaturationMass(depth int) float64 {
	if depth < 1 || len(p.Signals) == 0 {
		return 0
	}
	weights := make([]float64, len(p.Signals))
	for i, s := range p.Signals {
		weights[i] = s.Weight
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))
	if depth > len(weights) {
		depth = len(weights)
	}
	var mass float64
	for _, w := range weights[:depth] {
		mass += w
	}
	return mass
}

// Registry is the loaded, immutable profile catalog.
type Registry struct {
	profiles map[string]*Profile
	ids      []string
	source   string
}

// New builds a registry from in-memory profiles, validating and compiling
// every signal. Duplicate IDs are an error. An empty catalog is legal.
func New(profiles []Profile) (*Registry, error) {
	r := &Registry{
		profiles: make(map[string]*Profile, len(profiles)),
		source:   "memory",
	}
	for i := range profiles {
		p := profiles[i]
		if err := p.compile(); err != nil {
			return nil, err
		}
		if _, dup := r.profiles[p.ID]; dup {
			return nil, fmt.Errorf("duplicate profile id %q", p.ID)
		}
		r.profiles[p.ID] = &p
		r.ids = append(r.ids, p.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

// Load builds the catalog from the configured profile directories. One YAML
// file holds one profile. When no directory yields any profile, the built-in
// catalog applies unless disabled. An empty result is tolerated; the engine
// simply never activates.
func Load(cfg *config.Config) (*Registry, error) {
	timer := logging.StartTimer(logging.CategoryRegistry, "registry load")
	defer timer.Stop()

	var collected []Profile
	var sources []string
	for _, dir := range cfg.ProfileDirs() {
		profiles, err := loadDir(dir)
		if err != nil {
			return nil, err
		}
		if len(profiles) > 0 {
			collected = append(collected, profiles...)
			sources = append(sources, dir)
		}
	}

	if len(collected) == 0 {
		if cfg.Registry.DisableBuiltins {
			logging.RegistryWarn("profile catalog is empty (builtins disabled, no profile files)")
			r, err := New(nil)
			if err != nil {
				return nil, err
			}
			r.source = "empty"
			return r, nil
		}
		r, err := New(DefaultProfileData)
		if err != nil {
			return nil, fmt.Errorf("builtin catalog invalid: %w", err)
		}
		r.source = "builtin"
		logging.Registry("loaded %d builtin profiles", r.Len())
		return r, nil
	}

	r, err := New(collected)
	if err != nil {
		return nil, err
	}
	r.source = strings.Join(sources, string(os.PathListSeparator))
	logging.Registry("loaded %d profiles from %s", r.Len(), r.source)
	return r, nil
}

// loadDir reads every profile file in a directory. A missing directory is
// not an error; a malformed profile is.
func loadDir(dir string) ([]Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile dir %s: %w", dir, err)
	}

	var profiles []Profile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
		}
		var p Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Get returns the profile for an ID.
func (r *Registry) Get(id string) (*Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// All returns the profiles in ascending ID order. The slice is fresh; the
// profiles are shared and must not be mutated.
func (r *Registry) All() []*Profile {
	out := make([]*Profile, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.profiles[id])
	}
	return out
}

// IDs returns the sorted profile IDs.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of profiles.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Source describes where the catalog came from (builtin, memory, or the
// directories that contributed files).
func (r *Registry) Source() string {
	return r.source
}
