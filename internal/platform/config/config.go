package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvironmentLocal      = "local"
	EnvironmentProduction = "production"

	DriverDynamoDB = "dynamodb"
	DriverPostgres = "postgres"
)

// Config はアプリケーション全体の設定を表現します。
// Lambda のコールドスタート時に一度だけ構築し、明示的に受け渡します。
type Config struct {
	App      AppConfig      `yaml:"app"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	AWS      AWSConfig      `yaml:"aws"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	CORS     CORSConfig     `yaml:"cors"`
	Mail     MailConfig     `yaml:"mail"`
	Dev      DevConfig      `yaml:"dev"`
}

// AppConfig はアプリケーションの識別情報です。
type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

// LogConfig は構造化ログの設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig はレコードストアの選択です。
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

// AWSConfig は AWS SDK と DynamoDB テーブルの設定です。
type AWSConfig struct {
	Region           string       `yaml:"region"`
	DynamoDBEndpoint string       `yaml:"dynamodb_endpoint"`
	Tables           TablesConfig `yaml:"tables"`
}

// TablesConfig は DynamoDB のテーブル名です。
type TablesConfig struct {
	Employees string `yaml:"employees"`
	Contacts  string `yaml:"contacts"`
	Projects  string `yaml:"projects"`
	BlogPosts string `yaml:"blog_posts"`
	Emails    string `yaml:"emails"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。store.driver が postgres の場合のみ検証します。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// AuthConfig は認可の設定です。
// AllowHeaderIdentity は署名検証のないヘッダ認証を有効にします。production では設定できません。
type AuthConfig struct {
	EmployeeGroup       string `yaml:"employee_group"`
	AdminGroup          string `yaml:"admin_group"`
	AllowHeaderIdentity bool   `yaml:"allow_header_identity"`
	HeaderName          string `yaml:"header_name"`
	UserPoolID          string `yaml:"user_pool_id"`
}

// CORSConfig は CORS ヘッダの設定です。
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	DefaultOrigin  string   `yaml:"default_origin"`
}

// MailConfig は社員メールの外部配送設定です。
type MailConfig struct {
	From       string `yaml:"from"`
	SESEnabled bool   `yaml:"ses_enabled"`
}

// DevConfig はローカル開発サーバーの設定です。
type DevConfig struct {
	ListenAddr string         `yaml:"listen_addr"`
	Claims     map[string]any `yaml:"claims"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
// path が空の場合は既定値と環境変数のみを使います。
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	var cfg Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = parsed
		return nil
	}

	str("APP_ENV", &c.App.Environment)
	str("LOG_LEVEL", &c.Log.Level)
	str("STORE_DRIVER", &c.Store.Driver)
	str("AWS_REGION", &c.AWS.Region)
	str("DYNAMODB_ENDPOINT", &c.AWS.DynamoDBEndpoint)
	str("EMPLOYEES_TABLE", &c.AWS.Tables.Employees)
	str("CONTACTS_TABLE", &c.AWS.Tables.Contacts)
	str("PROJECTS_TABLE", &c.AWS.Tables.Projects)
	str("BLOG_POSTS_TABLE", &c.AWS.Tables.BlogPosts)
	str("EMAILS_TABLE", &c.AWS.Tables.Emails)
	str("USER_POOL_ID", &c.Auth.UserPoolID)
	str("DEFAULT_ORIGIN", &c.CORS.DefaultOrigin)
	str("MAIL_FROM", &c.Mail.From)
	str("DATABASE_HOST", &c.Database.Host)
	str("DATABASE_USER", &c.Database.User)
	str("DATABASE_PASSWORD", &c.Database.Password)
	str("DATABASE_NAME", &c.Database.Name)
	str("DATABASE_SSL_MODE", &c.Database.SSLMode)

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		c.CORS.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("DATABASE_PORT"); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: DATABASE_PORT: %w", err)
		}
		c.Database.Port = port
	}
	if err := boolean("ALLOW_HEADER_IDENTITY", &c.Auth.AllowHeaderIdentity); err != nil {
		return err
	}
	if err := boolean("SES_ENABLED", &c.Mail.SESEnabled); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateAndNormalize() error {
	if c.App.Name == "" {
		c.App.Name = "philocom-backoffice"
	}
	if c.App.Environment == "" {
		c.App.Environment = EnvironmentLocal
	}
	c.App.Environment = strings.ToLower(c.App.Environment)

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		c.Log.Level = strings.ToLower(c.Log.Level)
	default:
		return fmt.Errorf("config: log.level %q is not supported", c.Log.Level)
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("config: log.format %q is not supported", c.Log.Format)
	}

	if c.Store.Driver == "" {
		c.Store.Driver = DriverDynamoDB
	}
	switch c.Store.Driver {
	case DriverDynamoDB:
		if err := c.AWS.validateAndNormalize(); err != nil {
			return err
		}
	case DriverPostgres:
		if err := c.Database.validateAndNormalize(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("config: store.driver %q is not supported", c.Store.Driver)
	}

	if err := c.Auth.validateAndNormalize(c.App.Environment); err != nil {
		return err
	}

	if c.Mail.SESEnabled && c.Mail.From == "" {
		return fmt.Errorf("config: mail.from must be set when mail.ses_enabled is true")
	}

	if c.Dev.ListenAddr == "" {
		c.Dev.ListenAddr = ":8080"
	}

	return nil
}

func (a *AWSConfig) validateAndNormalize() error {
	if a.Region == "" {
		a.Region = "ap-northeast-1"
	}
	t := &a.Tables
	defaults := []struct {
		dst  *string
		name string
	}{
		{&t.Employees, "philocom-employees"},
		{&t.Contacts, "philocom-contacts"},
		{&t.Projects, "philocom-projects"},
		{&t.BlogPosts, "philocom-blog-posts"},
		{&t.Emails, "philocom-emails"},
	}
	for _, d := range defaults {
		if *d.dst == "" {
			*d.dst = d.name
		}
	}
	if a.DynamoDBEndpoint != "" {
		if _, err := url.ParseRequestURI(a.DynamoDBEndpoint); err != nil {
			return fmt.Errorf("config: aws.dynamodb_endpoint: %w", err)
		}
	}
	return nil
}

func (a *AuthConfig) validateAndNormalize(environment string) error {
	if a.EmployeeGroup == "" {
		a.EmployeeGroup = "employees"
	}
	if a.AdminGroup == "" {
		a.AdminGroup = "admins"
	}
	if a.HeaderName == "" {
		a.HeaderName = "X-Employee-Email"
	}
	if a.AllowHeaderIdentity && environment == EnvironmentProduction {
		return fmt.Errorf("config: auth.allow_header_identity must not be enabled in %s", EnvironmentProduction)
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DSN は pgx 用の接続文字列を返します。認証情報はエスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// IsProduction は本番環境かどうかを返します。
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvironmentProduction
}
