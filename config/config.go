// Package config handles pre-database configuration, such as the location of
// the database.  This is used by both shortlistd and shortlistadmin.
//
// Values come from, in order of precedence, SHORTLIST_* environment
// variables (a .env file in the working directory is loaded into the
// environment first), $HOME/.shortlist.yaml, and defaults.
package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Init loads configuration.  A missing .env or config file is not an error.
func Init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("can't read .env: %v", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	viper.SetConfigType("yaml")
	viper.SetConfigName(".shortlist")
	viper.AddConfigPath(home)
	viper.SetEnvPrefix("shortlist")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("viper can't read config file: %v", err)
	}
	log.Printf("using storage %q, sql connector %q", Storage(), SQLConnector())
	log.Printf("using listen address: %s", ListenAddress())
}

func setDefaults() {
	viper.SetDefault("db_url", "")
	viper.SetDefault("listen_address", ":8080")
	viper.SetDefault("sql_connector", "pgx")
	viper.SetDefault("max_open_conns", 10)
	viper.SetDefault("storage", "db")
	viper.SetDefault("cache_size", 32)
	viper.SetDefault("report_cache", "lru")
	viper.SetDefault("report_cache_ttl", "30s")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("identity_header", "X-Shortlist-User")
	viper.SetDefault("admin_users", []string{})
	viper.SetDefault("cors_origins", []string{})
	viper.SetDefault("paytable", "Shortlist 2025")
}

func DBURL() string {
	return viper.GetString("db_url")
}

func ListenAddress() string {
	return viper.GetString("listen_address")
}

// SQLConnector is "pgx" or "connector" (Cloud SQL).
func SQLConnector() string {
	return viper.GetString("sql_connector")
}

func MaxOpenConns() int {
	return viper.GetInt("max_open_conns")
}

// Storage is "db" or "memory".  The memory store starts with a demo round.
func Storage() string {
	return viper.GetString("storage")
}

func CacheSize() int {
	return viper.GetInt("cache_size")
}

// ReportCache is "lru", "redis" or "none".
func ReportCache() string {
	return viper.GetString("report_cache")
}

func ReportCacheTTL() time.Duration {
	return viper.GetDuration("report_cache_ttl")
}

type RedisSettings struct {
	Addr     string
	Password string
	DB       int
}

func Redis() RedisSettings {
	return RedisSettings{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	}
}

// IdentityHeader names the header set by the authenticating proxy in front
// of shortlistd.
func IdentityHeader() string {
	return viper.GetString("identity_header")
}

func AdminUsers() []string {
	return viper.GetStringSlice("admin_users")
}

func CORSOrigins() []string {
	return viper.GetStringSlice("cors_origins")
}

// DefaultPaytable is used for rounds that don't name one.
func DefaultPaytable() string {
	return viper.GetString("paytable")
}

type CloudSQLSettings struct {
	User      string
	Password  string
	Database  string
	Instance  string // project:region:instance
	PrivateIP bool
}

func CloudSQL() CloudSQLSettings {
	return CloudSQLSettings{
		User:      viper.GetString("cloudsql.user"),
		Password:  viper.GetString("cloudsql.password"),
		Database:  viper.GetString("cloudsql.database"),
		Instance:  viper.GetString("cloudsql.instance"),
		PrivateIP: viper.GetBool("cloudsql.private_ip"),
	}
}

func (s CloudSQLSettings) Missing() []string {
	missing := []string{}
	for k, v := range map[string]string{
		"cloudsql.user":     s.User,
		"cloudsql.password": s.Password,
		"cloudsql.database": s.Database,
		"cloudsql.instance": s.Instance,
	} {
		if v == "" {
			missing = append(missing, k)
		}
	}
	slices.Sort(missing)
	return missing
}
