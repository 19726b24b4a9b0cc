package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// serverSpec mirrors the flags the server config loader owns.
var serverSpec = Spec{
	Value: []string{"-a", "-d", "-c", "-config"},
	Bool:  []string{"-tx"},
}

func TestFilter_ServerFlagsOutOfCtlCommandLine(t *testing.T) {
	cases := map[string]struct {
		args []string
		want []string
	}{
		"ctl subcommand and its flags dropped": {
			args: []string{"bootstrap", "--user", "u-1", "-d", "postgres://db/taskflow", "--email", "a@b.c"},
			want: []string{"-d", "postgres://db/taskflow"},
		},
		"equals form for value and bool": {
			args: []string{"-a=:9090", "-tx=false", "--verbose"},
			want: []string{"-a=:9090", "-tx=false"},
		},
		"bool flag never swallows the next token": {
			args: []string{"-tx", "progress", "-a", ":8080"},
			want: []string{"-tx", "-a", ":8080"},
		},
		"value flag at the end has nothing to take": {
			args: []string{"stats", "-d"},
			want: []string{"-d"},
		},
		"dash token after a value flag is not its value": {
			args: []string{"-c", "-tx"},
			want: []string{"-c", "-tx"},
		},
		"value with leading dashes survives in equals form": {
			args: []string{"-config=--odd.json"},
			want: []string{"-config=--odd.json"},
		},
		"repeats kept in order": {
			args: []string{"-d", "first", "-d", "second"},
			want: []string{"-d", "first", "-d", "second"},
		},
		"nothing owned": {
			args: []string{"restart", "--user", "u-2"},
			want: []string{},
		},
		"no args": {
			args: nil,
			want: []string{},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Filter(tc.args, serverSpec))
		})
	}
}

func TestFilterArgs_TreatsEverythingAsValueFlag(t *testing.T) {
	got := FilterArgs([]string{"-tx", "on", "-x", "1"}, []string{"-tx"})
	assert.Equal(t, []string{"-tx", "on"}, got)
}

func TestConfigFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	cases := []struct {
		name string
		env  string
		args []string
		want string
	}{
		{name: "short flag", args: []string{"-c", "taskflow.json"}, want: "taskflow.json"},
		{name: "long flag", args: []string{"-config", "/etc/taskflow/server.json"}, want: "/etc/taskflow/server.json"},
		{name: "last one wins", args: []string{"-c", "a.json", "-config", "b.json"}, want: "b.json"},
		{name: "mixed with ctl flags", args: []string{"migrate", "--verbose", "-c=ctl.json"}, want: "ctl.json"},
		{name: "env fallback", env: "/srv/taskflow.json", want: "/srv/taskflow.json"},
		{name: "flag beats env", env: "/srv/taskflow.json", args: []string{"-c", "local.json"}, want: "local.json"},
		{name: "none", args: []string{"-a", ":8080"}, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(ConfigFileEnv, tc.env)
			os.Args = append([]string{"taskflow"}, tc.args...)
			assert.Equal(t, tc.want, ConfigFile())
		})
	}
}
