// Package flagx lets several components parse os.Args independently by
// filtering the argument list down to the flags each one owns.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigFileEnv names the environment variable consulted when no -c/-config
// flag is given.
const ConfigFileEnv = "TASKFLOW_CONFIG"

// Spec lists the flags a component owns. Value flags may take their value
// from the following argument; Bool flags never do.
type Spec struct {
	Value []string
	Bool  []string
}

// Filter returns the subset of args that belong to spec, preserving order.
//
// Supported forms:
//
//	-a value
//	-a=value / --addr=value
//	-tx (bool flags only)
func Filter(args []string, spec Spec) []string {
	values := toSet(spec.Value)
	bools := toSet(spec.Bool)

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := values[name]; ok {
				filtered = append(filtered, arg)
			} else if _, ok := bools[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := bools[arg]; ok {
			filtered = append(filtered, arg)
			continue
		}

		if _, ok := values[arg]; ok {
			filtered = append(filtered, arg)
			// the next token is the value unless it looks like another flag
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// FilterArgs is Filter for value flags only.
func FilterArgs(args []string, allowedFlags []string) []string {
	return Filter(args, Spec{Value: allowedFlags})
}

// ConfigFile returns the JSON config path given via -c or -config, falling
// back to $TASKFLOW_CONFIG. Empty means no file.
func ConfigFile() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	if config == "" {
		config = os.Getenv(ConfigFileEnv)
	}

	return config
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
