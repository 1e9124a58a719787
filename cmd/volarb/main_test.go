package main

import "testing"

func TestConfigDirArg(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"absent", []string{"run", "--json"}, ""},
		{"separate", []string{"run", "--config", "/tmp/cfg"}, "/tmp/cfg"},
		{"equals", []string{"run", "--config=/tmp/cfg"}, "/tmp/cfg"},
		{"dangling", []string{"run", "--config"}, ""},
		{"first wins", []string{"--config=/a", "--config", "/b"}, "/a"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := configDirArg(c.args); got != c.want {
				t.Errorf("configDirArg(%v) = %q, want %q", c.args, got, c.want)
			}
		})
	}
}
