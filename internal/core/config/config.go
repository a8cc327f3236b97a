package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP // 前台页面
	Admin HTTP // 后台
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type S3 struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
	PathStyle bool
}

type Storage struct {
	Driver    string // local | s3
	Dir       string // 本地图片目录
	PublicURL string // 模板里拼图片地址
	S3        S3
}

type Auth struct {
	Enforce      bool
	Cookie       string
	Header       string
	AdminPrefix  string
	SecureCookie bool // https 部署时打开
}

type View struct {
	MenuLimit int
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Storage Storage
	Auth    Auth
	View    View
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "catalog-admin")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("app.admin.readtimeoutsec", 10)
	v.SetDefault("app.admin.writetimeoutsec", 30)
	v.SetDefault("app.admin.idletimeoutsec", 60)

	v.SetDefault("log.level", "info")

	// 没有默认值的 key 不会被 AutomaticEnv 覆盖到 Unmarshal 结果里，这里全部登记一遍
	for _, k := range []string{
		"jwt.secret", "db.dsn", "db.username", "db.password",
		"redis.addr", "redis.password",
		"storage.s3.bucket", "storage.s3.region", "storage.s3.endpoint",
		"storage.s3.accesskey", "storage.s3.secretkey", "storage.s3.prefix",
		"log.rotate.filename",
	} {
		v.SetDefault(k, "")
	}
	v.SetDefault("redis.db", 0)
	v.SetDefault("db.automigrate", false)
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.enable", false)
	v.SetDefault("storage.s3.pathstyle", false)

	v.SetDefault("jwt.issuer", "catalog-admin")
	v.SetDefault("jwt.accesstokenttlmin", 120)

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.dir", "public/imgs/categories")
	v.SetDefault("storage.publicurl", "/imgs/categories")

	v.SetDefault("auth.enforce", true)
	v.SetDefault("auth.cookie", "admin_token")
	v.SetDefault("auth.header", "X-Admin-Token")
	v.SetDefault("auth.adminprefix", "/admin")
	v.SetDefault("auth.securecookie", false)

	v.SetDefault("view.menulimit", 12)
}

// Load 读取 YAML，APP_ 前缀的环境变量覆盖同名配置（db.dsn → APP_DB_DSN）
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}
	return &c, nil
}
