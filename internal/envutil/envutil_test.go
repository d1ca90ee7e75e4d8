package envutil

import (
	"reflect"
	"testing"
)

func TestSetEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   []string
		key   string
		value string
		want  []string
	}{
		{
			name:  "set new variable",
			env:   []string{"A=1"},
			key:   "B",
			value: "2",
			want:  []string{"A=1", "B=2"},
		},
		{
			name:  "replace existing variable",
			env:   []string{"A=1", "B=old"},
			key:   "B",
			value: "new",
			want:  []string{"A=1", "B=new"},
		},
		{
			name:  "empty slice",
			env:   nil,
			key:   "A",
			value: "1",
			want:  []string{"A=1"},
		},
		{
			name:  "empty value",
			env:   []string{"A=1"},
			key:   "A",
			value: "",
			want:  []string{"A="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SetEnv(append([]string(nil), tt.env...), tt.key, tt.value)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	env := []string{"A=1", "B=", "WAYLAND_DISPLAY=wayland-0"}

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"A", "1", true},
		{"B", "", true},
		{"WAYLAND_DISPLAY", "wayland-0", true},
		{"C", "", false},
		{"WAYLAND", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := GetEnv(env, tt.key)
			if ok != tt.wantOK {
				t.Fatalf("GetEnv(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("GetEnv(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name       string
		base       []string
		additional []string
		want       []string
	}{
		{
			name:       "override wins",
			base:       []string{"A=1", "B=2"},
			additional: []string{"B=3"},
			want:       []string{"A=1", "B=3"},
		},
		{
			name:       "new keys appended",
			base:       []string{"A=1"},
			additional: []string{"B=2", "C=3"},
			want:       []string{"A=1", "B=2", "C=3"},
		},
		{
			name:       "empty additional",
			base:       []string{"A=1"},
			additional: nil,
			want:       []string{"A=1"},
		},
		{
			name:       "empty base",
			base:       nil,
			additional: []string{"A=1"},
			want:       []string{"A=1"},
		},
		{
			name:       "display override",
			base:       []string{"PATH=/usr/bin", "DISPLAY=:1"},
			additional: []string{"DISPLAY=:0", "WAYLAND_DISPLAY=wayland-0"},
			want:       []string{"PATH=/usr/bin", "DISPLAY=:0", "WAYLAND_DISPLAY=wayland-0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeEnv(tt.base, tt.additional)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
