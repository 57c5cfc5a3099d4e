package config

import (
	"os"
	"testing"
)

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *BotConfig
		wantErr bool
	}{
		{
			name: "all variables set",
			env: map[string]string{
				EnvServer:            "ws://localhost:8080/ws",
				EnvSeed:              "12345",
				EnvBotID:             "bot-1",
				EnvTable:             "tournament",
				EnvNSamples:          "2000",
				EnvMaxRetries:        "64",
				EnvDeadlineMS:        "250",
				EnvQueenBreaksHearts: "false",
				EnvAggressiveMoon:    "true",
			},
			want: &BotConfig{
				ServerURL:         "ws://localhost:8080/ws",
				Seed:              12345,
				BotID:             "bot-1",
				TableID:           "tournament",
				NSamples:          2000,
				MaxRetries:        64,
				DeadlineMS:        250,
				QueenBreaksHearts: false,
				AggressiveMoon:    true,
			},
		},
		{
			name: "only required variables",
			env: map[string]string{
				EnvServer: "ws://localhost:8080/ws",
			},
			want: &BotConfig{
				ServerURL:         "ws://localhost:8080/ws",
				TableID:           "default",
				NSamples:          1000,
				MaxRetries:        32,
				QueenBreaksHearts: true,
			},
		},
		{
			name:    "missing server URL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "invalid seed",
			env: map[string]string{
				EnvServer: "ws://localhost:8080/ws",
				EnvSeed:   "not-a-number",
			},
			wantErr: true,
		},
		{
			name: "invalid aggressive moon flag",
			env: map[string]string{
				EnvServer:         "ws://localhost:8080/ws",
				EnvAggressiveMoon: "not-a-bool",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			got, err := FromEnv()
			if (err != nil) != tt.wantErr {
				t.Errorf("FromEnv() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}

			if *got != *tt.want {
				t.Errorf("FromEnv() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetEnv(t *testing.T) {
	env := []string{"EXISTING=value"}
	env = SetEnv(env, "NEW_KEY", "new_value")

	if len(env) != 2 {
		t.Errorf("Expected 2 environment variables, got %d", len(env))
	}
	if env[1] != "NEW_KEY=new_value" {
		t.Errorf("Expected 'NEW_KEY=new_value', got %s", env[1])
	}
}
