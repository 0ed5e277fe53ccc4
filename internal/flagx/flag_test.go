package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-d", "/tmp/nk", "-x", "10"},
			allowed: []string{"-d"},
			want:    []string{"-d", "/tmp/nk"},
		},
		{
			name:    "equals form",
			args:    []string{"-k=1000", "-l", "debug"},
			allowed: []string{"-k"},
			want:    []string{"-k=1000"},
		},
		{
			name:    "order preserved across allowed flags",
			args:    []string{"-a", "unix:///tmp/nk.sock", "-c", "conf.json", "-z", "1"},
			allowed: []string{"-c", "-a"},
			want:    []string{"-a", "unix:///tmp/nk.sock", "-c", "conf.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"positional", "-y", "2", "--q=3"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next flag is not taken as value",
			args:    []string{"-c", "-l", "warn"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "dash value allowed in equals form",
			args:    []string{"-config=-odd.json"},
			allowed: []string{"-config"},
			want:    []string{"-config=-odd.json"},
		},
		{
			name:    "repeated flag kept twice",
			args:    []string{"-l", "info", "-l", "debug"},
			allowed: []string{"-l"},
			want:    []string{"-l", "info", "-l", "debug"},
		},
		{
			name:    "empty",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/nestkey.json"}, "/etc/nestkey.json"},
		{"long", []string{"-config", "/etc/long.json"}, "/etc/long.json"},
		{"double dash equals", []string{"--config=/etc/eq.json"}, "/etc/eq.json"},
		{"mixed with other flags", []string{"-a", ":1", "-c", "x.json", "-k", "5"}, "x.json"},
		{"last wins", []string{"-c", "1.json", "-config", "2.json"}, "2.json"},
		{"absent", []string{"-a", "127.0.0.1:1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}
