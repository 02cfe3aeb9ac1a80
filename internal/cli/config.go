package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/ardnew/nibblemouse/internal/configpaths"
	"github.com/ardnew/nibblemouse/internal/prof"
	"github.com/ardnew/nibblemouse/pkg"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit writes a configuration template for a command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"run,hidraw"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// Run generates the template from the command's flag tags.
func (c *ConfigInit) Run(out io.Writer) error {
	data, err := Template(c.Command, c.Format)
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + configpaths.Ext(c.Format)
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%s exists; use --force to overwrite", dest)
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", dest)
	return nil
}

// Template renders the defaults of a command ("run" or "hidraw") and the
// global log and profiling flags in the given format.
func Template(command, format string) ([]byte, error) {
	var root map[string]any
	switch command {
	case "run":
		root = buildMap(reflect.TypeOf(RunCmd{}))
	case "hidraw":
		root = buildMap(reflect.TypeOf(HidrawCmd{}))
	default:
		return nil, fmt.Errorf("command %q: %w", command, pkg.ErrInvalidParameter)
	}
	root["log"] = buildMap(reflect.TypeOf(LogConfig{}))
	root["prof"] = buildMap(reflect.TypeOf(prof.Config{}))

	switch format {
	case "json":
		return json.MarshalIndent(root, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	default:
		return nil, fmt.Errorf("format %q: %w", format, pkg.ErrNotSupported)
	}
}

// flagName converts a Go field name to kong's default flag name.
func flagName(s string) string {
	var b strings.Builder
	r := []rune(s)
	for i, c := range r {
		if unicode.IsUpper(c) {
			prevLower := i > 0 && !unicode.IsUpper(r[i-1])
			nextLower := i+1 < len(r) && unicode.IsLower(r[i+1])
			if i > 0 && (prevLower || (nextLower && unicode.IsUpper(r[i-1]))) {
				b.WriteByte('-')
			}
			c = unicode.ToLower(c)
		}
		b.WriteRune(c)
	}
	return b.String()
}

func buildMap(t reflect.Type) map[string]any {
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("cmd"); ok {
			continue
		}
		if _, ok := f.Tag.Lookup("arg"); ok {
			continue
		}

		if _, ok := f.Tag.Lookup("embed"); ok {
			sub := buildMap(f.Type)
			if name := strings.TrimSuffix(f.Tag.Get("prefix"), "."); name != "" {
				out[name] = sub
			} else {
				for k, v := range sub {
					out[k] = v
				}
			}
			continue
		}

		key := f.Tag.Get("name")
		if key == "" {
			key = flagName(f.Name)
		}
		if v := defaultValue(f.Type, f.Tag.Get("default")); v != nil {
			out[key] = v
		}
	}
	return out
}

var durationType = reflect.TypeOf(time.Duration(0))

func defaultValue(t reflect.Type, def string) any {
	if t == durationType {
		if def == "" {
			return "0s"
		}
		return def
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		f, _ := strconv.ParseFloat(def, 64)
		return f
	default:
		return nil
	}
}
