package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	PayWay   PayWayConfig   `mapstructure:"payway"`
	Vendors  VendorsConfig  `mapstructure:"vendors"`
	Mail     MailConfig     `mapstructure:"mail"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	Port         string `mapstructure:"port"`
	SSLMode      string `mapstructure:"sslmode"`
	TimeZone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

// PayWayConfig ABA PayWay 网关配置
type PayWayConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	MerchantID  string `mapstructure:"merchant_id"`
	APIKey      string `mapstructure:"api_key"` // HMAC-SHA512 密钥
	ReturnURL   string `mapstructure:"return_url"`
	ContinueURL string `mapstructure:"continue_url"`
}

// VendorsConfig 充值供应商配置
type VendorsConfig struct {
	Ghor     GhorConfig     `mapstructure:"ghor"`
	SmileOne SmileOneConfig `mapstructure:"smileone"`
	Bangla   BanglaConfig   `mapstructure:"bangla"`
	UniPin   UniPinConfig   `mapstructure:"unipin"`
}

type GhorConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	ProxyURL string `mapstructure:"proxy_url"` // Ghor 只接受白名单 IP，请求经代理转发
}

type SmileOneConfig struct {
	BaseURL string `mapstructure:"base_url"`
	UID     string `mapstructure:"uid"`
	Email   string `mapstructure:"email"`
	Key     string `mapstructure:"key"`
}

type BanglaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type UniPinConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	PartnerID string `mapstructure:"partner_id"`
	SecretKey string `mapstructure:"secret_key"`
}

// MailConfig 运营告警邮件
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	AlertTo  string `mapstructure:"alert_to"`
}

type WorkerConfig struct {
	Num        int `mapstructure:"num"`
	BufferSize int `mapstructure:"buffer_size"`
}

var GlobalConfig Config

// Validate 验证配置
func (c *Config) Validate() error {
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	if c.PayWay.MerchantID == "" || c.PayWay.APIKey == "" {
		return errors.New("payway merchant credentials are required")
	}

	return nil
}

// LoadConfig 加载配置
func LoadConfig() error {
	// .env 不存在时忽略，容器里直接走环境变量
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// PAYWAY_BASE_URL -> payway.base_url
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&GlobalConfig); err != nil {
		return err
	}

	// 敏感配置以环境变量为准
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		GlobalConfig.JWT.Secret = jwtSecret
	}
	if apiKey := os.Getenv("PAYWAY_API_KEY"); apiKey != "" {
		GlobalConfig.PayWay.APIKey = apiKey
	}

	return GlobalConfig.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("jwt.expire", 24)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.debug", true)
	v.SetDefault("payway.base_url", "https://checkout-sandbox.payway.com.kh")
	v.SetDefault("vendors.smileone.base_url", "https://www.smile.one")
	v.SetDefault("worker.num", 2)
	v.SetDefault("worker.buffer_size", 200)
}
