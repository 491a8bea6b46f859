package main

import "testing"

func TestShouldSuppressTTYQueries(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		envRobot bool
		want     bool
	}{
		{"interactive", []string{"mg"}, false, false},
		{"robot stats", []string{"mg", "--robot-stats"}, false, true},
		{"robot stats single dash", []string{"mg", "-robot-stats"}, false, true},
		{"snapshot", []string{"mg", "--snapshot=out.svg"}, false, true},
		{"env robot", []string{"mg"}, true, true},
		{"data flag only", []string{"mg", "--data=/tmp"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldSuppressTTYQueries(tt.args, tt.envRobot); got != tt.want {
				t.Errorf("shouldSuppressTTYQueries(%v, %v) = %v, want %v", tt.args, tt.envRobot, got, tt.want)
			}
		})
	}
}
