package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// ConfigSources lists the configuration file candidates main handed to kong,
// grouped by loader.
type ConfigSources struct {
	JSON, YAML, TOML []string
}

// ShowConfig prints the effective configuration in a form that can be saved
// as a config file.
type ShowConfig struct {
	Format string `help:"Output format" enum:"yaml,toml,json" default:"yaml" short:"f"`
}

// Run is called by Kong when the config command is executed.
func (c *ShowConfig) Run(kctx *kong.Context, sources ConfigSources) error {
	resolvers, err := loadResolvers(sources)
	if err != nil {
		return err
	}
	eff := Effective(kctx, resolvers)
	out, err := eff.Render(c.Format)
	if err != nil {
		return err
	}
	_, err = kctx.Stdout.Write(out)
	return err
}

// EffectiveConfig holds resolved flag values: global flags by flag name and
// command flags grouped under their command.
type EffectiveConfig struct {
	Global   map[string]any
	Commands map[string]map[string]any
}

// Effective resolves every configurable flag. Global flags were already
// parsed by kong; command flags take the first value found in the config
// files, then the environment, then the default.
func Effective(kctx *kong.Context, resolvers []kong.Resolver) EffectiveConfig {
	eff := EffectiveConfig{Global: map[string]any{}, Commands: map[string]map[string]any{}}
	for _, f := range kctx.Model.Flags {
		if skipFlag(f) {
			continue
		}
		if v, ok := plain(f.Target); ok {
			eff.Global[f.Name] = v
		}
	}
	for _, node := range kctx.Model.Children {
		if node.Type != kong.CommandNode || node.Name == "config" {
			continue
		}
		path := &kong.Path{Command: node}
		for _, f := range node.Flags {
			if skipFlag(f) {
				continue
			}
			v, ok := resolve(kctx, path, f, resolvers)
			if !ok {
				continue
			}
			if eff.Commands[node.Name] == nil {
				eff.Commands[node.Name] = map[string]any{}
			}
			eff.Commands[node.Name][f.Name] = v
		}
	}
	return eff
}

func skipFlag(f *kong.Flag) bool {
	return f.Hidden || f.Name == "help" || f.Name == "config"
}

func resolve(kctx *kong.Context, path *kong.Path, f *kong.Flag, resolvers []kong.Resolver) (any, bool) {
	for _, r := range resolvers {
		if v, err := r.Resolve(kctx, path, f); err == nil && v != nil {
			return v, true
		}
	}
	for _, env := range f.Envs {
		if v, ok := os.LookupEnv(env); ok {
			return v, true
		}
	}
	return plain(f.Target)
}

// plain converts a flag target into a value every encoder handles. Empty
// slices are omitted.
func plain(v reflect.Value) (any, bool) {
	if !v.IsValid() {
		return nil, false
	}
	if d, ok := v.Interface().(time.Duration); ok {
		return d.String(), true
	}
	if v.Kind() == reflect.Slice {
		if v.Len() == 0 {
			return nil, false
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = v.Index(i).Interface()
		}
		return out, true
	}
	return v.Interface(), true
}

// Render encodes the configuration in the layout the matching kong loader
// reads back: JSON is flat with snake_case keys, YAML and TOML nest command
// flags under the command name.
func (e EffectiveConfig) Render(format string) ([]byte, error) {
	switch format {
	case "json":
		flat := map[string]any{}
		for k, v := range e.Global {
			flat[k] = v
		}
		for _, name := range commandOrder(e.Commands) {
			for k, v := range e.Commands[name] {
				key := strings.ReplaceAll(k, "-", "_")
				if _, dup := flat[key]; !dup {
					flat[key] = v
				}
			}
		}
		b, err := json.MarshalIndent(flat, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml", "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(e.nested()); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "toml":
		tree, err := toml.TreeFromMap(e.nested())
		if err != nil {
			return nil, err
		}
		s, err := tree.ToTomlString()
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func (e EffectiveConfig) nested() map[string]any {
	out := map[string]any{}
	for k, v := range e.Global {
		out[k] = v
	}
	for name, flags := range e.Commands {
		m := map[string]any{}
		for k, v := range flags {
			m[k] = v
		}
		out[name] = m
	}
	return out
}

// commandOrder puts the relay commands first so their values win shared keys.
func commandOrder(cmds map[string]map[string]any) []string {
	order := []string{"transmit", "receive"}
	for name := range cmds {
		if name != "transmit" && name != "receive" {
			order = append(order, name)
		}
	}
	return order
}

func loadResolvers(s ConfigSources) ([]kong.Resolver, error) {
	loaders := []struct {
		paths  []string
		loader kong.ConfigurationLoader
	}{
		{s.JSON, kong.JSON},
		{s.YAML, kongyaml.Loader},
		{s.TOML, kongtoml.Loader},
	}
	var out []kong.Resolver
	for _, l := range loaders {
		for _, p := range l.paths {
			r, err := loadResolver(p, l.loader)
			if err != nil {
				return nil, err
			}
			if r != nil {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func loadResolver(path string, loader kong.ConfigurationLoader) (kong.Resolver, error) {
	f, err := os.Open(kong.ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	r, err := loader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
