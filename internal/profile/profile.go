// Package profile holds the static, versioned dataset profiles that tell the
// cleaning pipeline how to treat each kind of export. Built-in profiles are
// embedded in the binary; a profiles directory can add or override them.
package profile

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/nbaclean-cli/internal/clean"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrUnknownProfile is returned by Get for names no profile carries.
var ErrUnknownProfile = errors.New("unknown profile")

// Profile describes one dataset kind: how to clean it and which columns the
// statistics commands look at by default.
type Profile struct {
	Name        string       `yaml:"name" validate:"required"`
	Version     int          `yaml:"version" validate:"gte=1"`
	Description string       `yaml:"description,omitempty"`
	Input       string       `yaml:"input,omitempty"`
	Clean       clean.Config `yaml:"clean"`
	Describe    []string     `yaml:"describe,omitempty"`
	Correlate   []string     `yaml:"correlate,omitempty"`

	// Origin is "builtin" or the file the profile was read from.
	Origin string `yaml:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml field names, which is what users edit.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse decodes and validates one YAML profile document. Unknown fields are
// rejected so typos do not silently disable a rule.
func Parse(data []byte, origin string) (Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", origin, err)
	}
	p.Origin = origin
	if p.Clean.Dataset == "" {
		p.Clean.Dataset = p.Name
	}
	if err := Validate(p); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", origin, err)
	}
	return p, nil
}

// Validate checks struct constraints and the pipeline configuration.
func Validate(p Profile) error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", clean.ErrConfig, strings.Join(msgs, "; "))
		}
		return err
	}
	return p.Clean.Check()
}

// Marshal renders the profile back to YAML.
func (p Profile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Registry is a set of profiles addressed by name.
type Registry struct {
	byName map[string]Profile
}

// Builtin returns the profiles shipped with the binary.
func Builtin() (*Registry, error) {
	r := &Registry{byName: make(map[string]Profile)}
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := builtinFS.ReadFile("builtin/" + e.Name())
		if err != nil {
			return nil, err
		}
		p, err := Parse(data, "builtin")
		if err != nil {
			return nil, err
		}
		r.byName[p.Name] = p
	}
	return r, nil
}

// Load returns the built-in profiles overlaid with every *.yaml or *.yml
// file in dir. A user profile replaces a built-in one of the same name. An
// empty dir or a dir that does not exist yields the built-ins alone.
func Load(dir string) (*Registry, error) {
	r, err := Builtin()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return r, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read profiles dir: %w", err)
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		p, err := Parse(data, path)
		if err != nil {
			return nil, err
		}
		r.byName[p.Name] = p
	}
	return r, nil
}

// Get returns the named profile.
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.byName[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownProfile, name, strings.Join(r.Names(), ", "))
	}
	return p, nil
}

// Names lists profile names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List returns all profiles sorted by name.
func (r *Registry) List() []Profile {
	out := make([]Profile, 0, len(r.byName))
	for _, n := range r.Names() {
		out = append(out, r.byName[n])
	}
	return out
}

// ForInput finds the profile whose Input matches the base name of path,
// ignoring case.
func (r *Registry) ForInput(path string) (Profile, bool) {
	base := filepath.Base(path)
	for _, p := range r.List() {
		if p.Input != "" && strings.EqualFold(p.Input, base) {
			return p, true
		}
	}
	return Profile{}, false
}

// Present filters cols down to those present in have, keeping order.
func Present(cols []string, have func(string) bool) []string {
	var out []string
	for _, c := range cols {
		if have(c) {
			out = append(out, c)
		}
	}
	return out
}
