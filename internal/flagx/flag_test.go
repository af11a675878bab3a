package flagx

import (
	"os"
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
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", "localhost"},
			allowed: []string{"-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-s"},
			allowed: []string{"-s"},
			want:    []string{"-s"},
		},
		{
			name:    "next flag is not a value",
			args:    []string{"-c", "-t", "5"},
			allowed: []string{"-c", "-t"},
			want:    []string{"-c", "-t", "5"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-s", "one", "-s", "two"},
			allowed: []string{"-s"},
			want:    []string{"-s", "one", "-s", "two"},
		},
		{
			name:    "empty args",
			args:    []string{},
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

func TestConfigFiles(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c and -env", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/etc/authkeeper.json", "-env", "/etc/authkeeper.env", "-s", "x"}
		j, e := ConfigFiles()
		assert.Equal(t, "/etc/authkeeper.json", j)
		assert.Equal(t, "/etc/authkeeper.env", e)
	})

	t.Run("long -config", func(t *testing.T) {
		os.Args = []string{"testbin", "-config=/path/long.json"}
		j, e := ConfigFiles()
		assert.Equal(t, "/path/long.json", j)
		assert.Empty(t, e)
	})

	t.Run("nothing given", func(t *testing.T) {
		os.Args = []string{"testbin", "-a", ":50051"}
		j, e := ConfigFiles()
		assert.Empty(t, j)
		assert.Empty(t, e)
	})
}

func TestPositional(t *testing.T) {
	valued := []string{"-a", "-f", "-t", "-c"}
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"flags then command", []string{"-a", "host:1", "-t", "3", "signin", "alice"}, []string{"signin", "alice"}},
		{"equals form", []string{"-f=/tmp/s.json", "whoami"}, []string{"whoami"}},
		{"boolean flag", []string{"-v", "renew"}, []string{"renew"}},
		{"valued flag at end", []string{"signout", "-a"}, []string{"signout"}},
		{"double dash", []string{"-a", "h", "--", "-x", "y"}, []string{"-x", "y"}},
		{"nothing", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args, valued))
		})
	}
}
