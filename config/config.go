/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT             = "5001"
	DEFAULT_SMTP_PORT        = 587
	DEFAULT_FROM_EMAIL       = "no-reply@example.com"
	DEFAULT_SHOPIFY_VERSION  = "2025-10"
	DEFAULT_LOCK_TIMEOUT_SEC = 30
	DEFAULT_LOCK_WAIT_SEC    = 5
	DEFAULT_CACHE_TTL_SEC    = 600
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"CARTREEL_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"CARTREEL_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"CARTREEL_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"CARTREEL_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"CARTREEL_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"CARTREEL_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"CARTREEL_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"CARTREEL_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"CARTREEL_REDIS_SKIP_TLS_VERIFY"`
}

// SMTPConfig configures the mail transport used for abandonment emails.
type SMTPConfig struct {
	Host      string `json:"host" envconfig:"CARTREEL_SMTP_HOST"`
	Port      int    `json:"port" envconfig:"CARTREEL_SMTP_PORT"`
	Username  string `json:"username" envconfig:"CARTREEL_SMTP_USERNAME"`
	Password  string `json:"password" envconfig:"CARTREEL_SMTP_PASSWORD"`
	FromEmail string `json:"from_email" envconfig:"CARTREEL_SMTP_FROM_EMAIL"`
	FromName  string `json:"from_name" envconfig:"CARTREEL_SMTP_FROM_NAME"`
}

// ShopifyConfig holds the app credentials used to verify webhooks and to
// reach the Admin API for metaobject mirroring. AccessTokens maps a shop
// domain to its offline session token.
type ShopifyConfig struct {
	ApiKey         string            `json:"api_key" envconfig:"CARTREEL_SHOPIFY_API_KEY"`
	ApiSecret      string            `json:"api_secret" envconfig:"CARTREEL_SHOPIFY_API_SECRET"`
	ApiVersion     string            `json:"api_version" envconfig:"CARTREEL_SHOPIFY_API_VERSION"`
	AccessTokens   map[string]string `json:"access_tokens"`
	MetaobjectType string            `json:"metaobject_type" envconfig:"CARTREEL_SHOPIFY_METAOBJECT_TYPE"`
}

type LockConfig struct {
	TimeoutSec     int `json:"timeout_sec" envconfig:"CARTREEL_LOCK_TIMEOUT_SEC"`
	WaitTimeoutSec int `json:"wait_timeout_sec" envconfig:"CARTREEL_LOCK_WAIT_TIMEOUT_SEC"`
}

type CacheConfig struct {
	Disabled bool `json:"disabled" envconfig:"CARTREEL_CACHE_DISABLED"`
	TTLSec   int  `json:"ttl_sec" envconfig:"CARTREEL_CACHE_TTL_SEC"`
}

// AbandonmentConfig tunes the abandonment heuristic. Strict disables the
// presentment currency + recovery url fallback.
type AbandonmentConfig struct {
	Strict bool `json:"strict" envconfig:"CARTREEL_ABANDONMENT_STRICT"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"CARTREEL_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"CARTREEL_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"CARTREEL_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type WebhookConfig struct {
	Url     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

type Notification struct {
	Slack   SlackWebhook  `json:"slack"`
	Webhook WebhookConfig `json:"webhook"`
}

type Configuration struct {
	ProjectName     string            `json:"project_name" envconfig:"CARTREEL_PROJECT_NAME"`
	EnableTelemetry bool              `json:"enable_telemetry" envconfig:"CARTREEL_ENABLE_TELEMETRY"`
	Server          ServerConfig      `json:"server"`
	DataSource      DataSourceConfig  `json:"data_source"`
	Redis           RedisConfig       `json:"redis"`
	SMTP            SMTPConfig        `json:"smtp"`
	Shopify         ShopifyConfig     `json:"shopify"`
	Lock            LockConfig        `json:"lock"`
	Cache           CacheConfig       `json:"cache"`
	Abandonment     AbandonmentConfig `json:"abandonment"`
	Notification    Notification      `json:"notification"`
	RateLimit       RateLimitConfig   `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("cartreel", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called cartreel.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Cartreel Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.SMTP.Host = strings.TrimSpace(cnf.SMTP.Host)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Shopify.ApiSecret == "" {
		log.Println("Warning: Shopify API secret is empty. Every webhook will be rejected as unauthenticated.")
	}
	if cnf.Shopify.ApiVersion == "" {
		cnf.Shopify.ApiVersion = DEFAULT_SHOPIFY_VERSION
	}
	if cnf.Shopify.MetaobjectType == "" {
		cnf.Shopify.MetaobjectType = "customer_video_data"
	}

	if cnf.SMTP.Port == 0 {
		cnf.SMTP.Port = DEFAULT_SMTP_PORT
	}
	// sender falls back to the smtp login before the generic no-reply address
	if cnf.SMTP.FromEmail == "" {
		cnf.SMTP.FromEmail = cnf.SMTP.Username
	}
	if cnf.SMTP.FromEmail == "" {
		cnf.SMTP.FromEmail = DEFAULT_FROM_EMAIL
	}

	if cnf.Lock.TimeoutSec <= 0 {
		cnf.Lock.TimeoutSec = DEFAULT_LOCK_TIMEOUT_SEC
	}
	if cnf.Lock.WaitTimeoutSec <= 0 {
		cnf.Lock.WaitTimeoutSec = DEFAULT_LOCK_WAIT_SEC
	}

	if cnf.Cache.TTLSec <= 0 {
		cnf.Cache.TTLSec = DEFAULT_CACHE_TTL_SEC
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
