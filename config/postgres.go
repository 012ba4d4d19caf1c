package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// PostgresConfig defines the connection to the optional quote archive.
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`

	// SSMPrefix is the Parameter Store path holding host/user/password in prod.
	SSMPrefix string `mapstructure:"ssm_prefix"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// Retention prunes archived quote snapshots older than this at startup. Zero keeps everything.
	Retention time.Duration `mapstructure:"retention"`
}

// ParameterGetter fetches one secret by name.
type ParameterGetter func(ctx context.Context, name string) (string, error)

// DSN builds the connection string. In prod the credentials come from SSM Parameter Store.
func (cfg *PostgresConfig) DSN(env string) string {
	return cfg.dsn(env, cfg.DBName, getParameterStoreValue)
}

// MaintenanceDSN targets the server's default "postgres" database, used to create DBName.
func (cfg *PostgresConfig) MaintenanceDSN(env string) string {
	return cfg.dsn(env, "postgres", getParameterStoreValue)
}

func (cfg *PostgresConfig) dsn(env, dbName string, get ParameterGetter) string {
	host, user, password := cfg.Host, cfg.User, cfg.Password

	if env == "prod" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if v, err := get(ctx, cfg.SSMPrefix+"/host"); err == nil && v != "" {
			host = v
		}
		if v, err := get(ctx, cfg.SSMPrefix+"/user"); err == nil && v != "" {
			user = v
		}
		if v, err := get(ctx, cfg.SSMPrefix+"/password"); err == nil && v != "" {
			password = v
		}
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, cfg.Port, user, password, dbName, cfg.SSLMode,
	)
	if cfg.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", cfg.TimeZone)
	}
	return dsn
}

func getParameterStoreValue(ctx context.Context, parameterName string) (string, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}

	client := ssm.NewFromConfig(cfg)

	decrypt := true
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &parameterName,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return "", err
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", parameterName)
	}

	return *result.Parameter.Value, nil
}
