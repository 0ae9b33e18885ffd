package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadReporter_Defaults(t *testing.T) {
	cfg, err := loadReporter(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != BackendHTTP {
		t.Errorf("expected http backend, got %q", cfg.Backend)
	}
	if cfg.FeedbackLifetime != 3*time.Second {
		t.Errorf("expected 3s feedback lifetime, got %s", cfg.FeedbackLifetime)
	}
	if cfg.Geolocation.Timeout != 10*time.Second || !cfg.Geolocation.HighAccuracy {
		t.Errorf("unexpected geolocation defaults: %+v", cfg.Geolocation)
	}
	if cfg.API.URL != "http://localhost:8080" {
		t.Errorf("unexpected api url %q", cfg.API.URL)
	}
}

func TestLoadReporter_Overrides(t *testing.T) {
	cfg, err := loadReporter(context.Background(), envconfig.MapLookuper(map[string]string{
		"PERSISTENCE_BACKEND":  "dynamodb",
		"DYNAMODB_TABLE":       "dropoffs",
		"GEOLOCATION_PROVIDER": "fixed",
		"FIXED_LATITUDE":       "19.43",
		"FIXED_LONGITUDE":      "-99.13",
		"GEOLOCATION_TIMEOUT":  "5s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DynamoDB.Table != "dropoffs" || cfg.Geolocation.FixedLatitude != 19.43 || cfg.Geolocation.Timeout != 5*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadReporter_Invalid(t *testing.T) {
	cases := map[string]struct {
		env  map[string]string
		want string
	}{
		"unknown backend":  {map[string]string{"PERSISTENCE_BACKEND": "firebase"}, "PERSISTENCE_BACKEND"},
		"unknown provider": {map[string]string{"GEOLOCATION_PROVIDER": "gps"}, "GEOLOCATION_PROVIDER"},
		"geoip no address": {map[string]string{"GEOLOCATION_PROVIDER": "geoip"}, "GEOIP_ADDR"},
		"timeout too long": {map[string]string{"GEOLOCATION_TIMEOUT": "30s"}, "GEOLOCATION_TIMEOUT"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadReporter(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
