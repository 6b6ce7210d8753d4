package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Name      string
	Env       string
	Host      string
	Port      int
	PublicURL string
}

type LogCfg struct {
	Level string
}

type DBCfg struct {
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
}

type RedisCfg struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type MQCfg struct {
	URL      string
	Exchange string
}

type S3Cfg struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UsePathStyle bool
	SSE          string
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string
	SampleRatio  float64
}

type SessionCfg struct {
	CookieName   string
	TTLSec       int
	DevUserID    string
	DevUserEmail string
}

type StripeCfg struct {
	SecretKey     string
	WebhookSecret string
	PriceIDBasic  string
	PriceIDPro    string
}

type TablesCfg struct {
	CellTypePolicy  string
	MaxImportBytes  int64
	DefaultPageSize int
	MaxPageSize     int
}

// PlanLimitCfg holds the quota of one plan. A negative value means unlimited.
type PlanLimitCfg struct {
	Workspaces   int
	Tables       int
	RowsPerTable int
}

type PlansCfg struct {
	Free  PlanLimitCfg
	Basic PlanLimitCfg
	Pro   PlanLimitCfg
}

type Config struct {
	App       AppCfg
	Log       LogCfg
	Database  DBCfg
	Redis     RedisCfg
	RabbitMQ  MQCfg
	S3        S3Cfg
	Telemetry TelemetryCfg
	Session   SessionCfg
	Stripe    StripeCfg
	Tables    TablesCfg
	Plans     PlansCfg
}

func Load() (*Config, error) {
	base := viper.New()
	base.SetConfigName("config")
	base.SetConfigType("yaml")
	base.AddConfigPath("./configs")
	base.AddConfigPath(".")
	base.AutomaticEnv()
	base.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	base.SetEnvPrefix("APP") // e.g. APP_STRIPE_SECRETKEY -> stripe.secretKey

	// First assign a default value (effective regardless of whether there is a file or not)
	setDefaults(base)

	// Read the file (if any)
	if err := base.ReadInConfig(); err == nil {
		// After finding the file, manually perform one expansion of ${ENV}, and then parse it.
		path := base.ConfigFileUsed()
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return loadFrom(raw)
	}

	// No files are also allowed, using only env + default values
	cfg := new(Config)
	if err := base.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFrom parses a yaml document after ${ENV} expansion, with env overrides and defaults applied.
func loadFrom(raw []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(raw))

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, err
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	setDefaults(v)

	cfg := new(Config)
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gridspace-api")
	v.SetDefault("app.env", "debug")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.publicURL", "http://localhost:3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.maxOpen", 20)
	v.SetDefault("database.maxIdle", 5)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("rabbitmq.exchange", "gridspace.events")
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.usePathStyle", true)
	v.SetDefault("telemetry.sampleRatio", 1.0)
	v.SetDefault("session.cookieName", "gridspace_session")
	v.SetDefault("session.ttlSec", 7*24*60*60)
	v.SetDefault("session.devUserEmail", "dev@gridspace.local")
	v.SetDefault("tables.cellTypePolicy", "hint")
	v.SetDefault("tables.maxImportBytes", 10<<20)
	v.SetDefault("tables.defaultPageSize", 50)
	v.SetDefault("tables.maxPageSize", 500)

	// empty defaults so AutomaticEnv can bind env-only keys during Unmarshal
	for _, k := range []string{
		"database.dsn", "redis.password", "rabbitmq.url",
		"s3.endpoint", "s3.accessKey", "s3.secretKey", "s3.bucket", "s3.sse",
		"telemetry.otlpEndpoint", "session.devUserId",
		"stripe.secretKey", "stripe.webhookSecret", "stripe.priceIdBasic", "stripe.priceIdPro",
	} {
		v.SetDefault(k, "")
	}

	// plan quotas, -1 = unlimited
	v.SetDefault("plans.free.workspaces", 1)
	v.SetDefault("plans.free.tables", 3)
	v.SetDefault("plans.free.rowsPerTable", 100)
	v.SetDefault("plans.basic.workspaces", 5)
	v.SetDefault("plans.basic.tables", 20)
	v.SetDefault("plans.basic.rowsPerTable", 10000)
	v.SetDefault("plans.pro.workspaces", -1)
	v.SetDefault("plans.pro.tables", -1)
	v.SetDefault("plans.pro.rowsPerTable", -1)
}
