package config

import (
	"reflect"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()
	t.Setenv("SHORTLIST_LISTEN_ADDRESS", ":9999")
	viper.SetEnvPrefix("shortlist")
	viper.AutomaticEnv()

	if got := ListenAddress(); got != ":9999" {
		t.Errorf("ListenAddress() = %q, want the environment's :9999", got)
	}
	if got := SQLConnector(); got != "pgx" {
		t.Errorf("SQLConnector() = %q, want pgx", got)
	}
	if got := ReportCacheTTL().Seconds(); got != 30 {
		t.Errorf("ReportCacheTTL() = %vs, want 30s", got)
	}
	if got := IdentityHeader(); got != "X-Shortlist-User" {
		t.Errorf("IdentityHeader() = %q", got)
	}
}

func TestCloudSQLMissing(t *testing.T) {
	s := CloudSQLSettings{User: "u", Instance: "p:r:i"}
	want := []string{"cloudsql.database", "cloudsql.password"}
	if got := s.Missing(); !reflect.DeepEqual(got, want) {
		t.Errorf("Missing() = %v, want %v", got, want)
	}
}
