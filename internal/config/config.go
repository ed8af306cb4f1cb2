package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
	"gopkg.in/ini.v1"

	"dwhload/internal/common"
	apperrors "dwhload/pkg/errors"
	"dwhload/pkg/models"
)

const (
	// DefaultConfigFile is read from the working directory when nothing else is given
	DefaultConfigFile = "dwh.cfg"
	// EnvConfigFile overrides the configuration file location
	EnvConfigFile = "DWH_CONFIG"

	envPrefix      = "DWH"
	keyringService = "dwhload"
)

// requiredKeys lists every key that must resolve to a non-empty value, in report order.
var requiredKeys = []string{
	"cluster.host",
	"cluster.db_name",
	"cluster.db_user",
	"cluster.db_port",
	"iam_role.arn",
	"s3.log_data",
	"s3.log_jsonpath",
	"s3.song_data",
}

// GetConfigFile resolves the configuration path: explicit value, then $DWH_CONFIG, then dwh.cfg.
func GetConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if configFile := os.Getenv(EnvConfigFile); configFile != "" {
		return configFile
	}
	return DefaultConfigFile
}

// Load reads the INI file at path, applies DWH_<SECTION>_<KEY> environment
// overrides and the keyring password fallback, and validates the result.
func Load(path string) (*models.Config, error) {
	cleanedPath, err := common.CleanPath(path)
	if err != nil {
		return nil, apperrors.ConfigReadError(path, err)
	}

	// Passwords, ARNs and S3 paths may contain '#' or ';'
	file, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:         true,
		IgnoreInlineComment: true,
	}, cleanedPath)
	if err != nil {
		return nil, apperrors.ConfigReadError(path, err)
	}

	v := newViper(file)

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}

	if cfg.Cluster.Password == "" {
		password, err := LookupPassword(cfg.Cluster.User)
		if err != nil {
			return nil, err
		}
		cfg.Cluster.Password = password
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newViper(file *ini.File) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("cluster.driver", models.DriverPostgres)
	v.SetDefault("cluster.sslmode", models.DefaultSSLMode)
	v.SetDefault("s3.region", models.DefaultRegion)

	for _, section := range file.Sections() {
		if section.Name() == strings.ToLower(ini.DefaultSection) {
			continue
		}
		for _, key := range section.Keys() {
			if key.Value() == "" && v.IsSet(section.Name()+"."+key.Name()) {
				continue
			}
			v.SetDefault(section.Name()+"."+key.Name(), key.Value())
		}
	}

	return v
}

func fromViper(v *viper.Viper) (*models.Config, error) {
	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return nil, missingKey(key)
		}
	}

	portValue := strings.TrimSpace(v.GetString("cluster.db_port"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, apperrors.ConfigError(fmt.Sprintf("DB_PORT %q is not a number", portValue), "CLUSTER.DB_PORT")
	}

	return &models.Config{
		Cluster: models.Cluster{
			Host:     v.GetString("cluster.host"),
			DBName:   v.GetString("cluster.db_name"),
			User:     v.GetString("cluster.db_user"),
			Password: v.GetString("cluster.db_password"),
			Port:     port,
			Driver:   strings.ToLower(v.GetString("cluster.driver")),
			SSLMode:  v.GetString("cluster.sslmode"),
		},
		IAMRole: models.IAMRole{
			ARN: v.GetString("iam_role.arn"),
		},
		S3: models.S3{
			LogData:     v.GetString("s3.log_data"),
			LogJSONPath: v.GetString("s3.log_jsonpath"),
			SongData:    v.GetString("s3.song_data"),
			Region:      v.GetString("s3.region"),
		},
	}, nil
}

// Validate checks a configuration assembled outside Load
func Validate(cfg *models.Config) error {
	switch {
	case cfg.Cluster.Host == "":
		return missingKey("cluster.host")
	case cfg.Cluster.DBName == "":
		return missingKey("cluster.db_name")
	case cfg.Cluster.User == "":
		return missingKey("cluster.db_user")
	case cfg.Cluster.Password == "":
		return missingKey("cluster.db_password")
	case cfg.IAMRole.ARN == "":
		return missingKey("iam_role.arn")
	}

	if cfg.Cluster.Port < 1 || cfg.Cluster.Port > 65535 {
		return apperrors.ConfigError(fmt.Sprintf("DB_PORT %d is out of range", cfg.Cluster.Port), "CLUSTER.DB_PORT")
	}

	switch cfg.Cluster.Driver {
	case models.DriverPostgres, models.DriverPgx:
	default:
		return apperrors.ConfigError(fmt.Sprintf("unsupported driver %q", cfg.Cluster.Driver), "CLUSTER.DRIVER")
	}

	locations := []struct {
		field string
		value string
	}{
		{"S3.LOG_DATA", cfg.S3.LogData},
		{"S3.LOG_JSONPATH", cfg.S3.LogJSONPath},
		{"S3.SONG_DATA", cfg.S3.SongData},
	}
	for _, loc := range locations {
		if !strings.HasPrefix(loc.value, "s3://") {
			return apperrors.ConfigError(fmt.Sprintf("%s must be an s3:// location, got %q", loc.field, loc.value), loc.field)
		}
	}

	return nil
}

// LookupPassword fetches the password stored for user in the OS keyring
func LookupPassword(user string) (string, error) {
	password, err := keyring.Get(keyringService, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", apperrors.ConfigError(
			fmt.Sprintf("DB_PASSWORD is empty and no keyring entry exists for %q", user),
			"CLUSTER.DB_PASSWORD",
		).WithSuggestions("Run 'dwhload password <DB_USER>' to store it in the keyring")
	}
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeCredentials, "Failed to read password from keyring").
			WithContext("user", user)
	}
	return password, nil
}

// StorePassword saves the password for user in the OS keyring
func StorePassword(user, password string) error {
	if err := keyring.Set(keyringService, user, password); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCredentials, "Failed to store password in keyring").
			WithContext("user", user)
	}
	return nil
}

func missingKey(key string) *apperrors.AppError {
	field := strings.ToUpper(key)
	section, name, _ := strings.Cut(field, ".")
	return apperrors.New(apperrors.ErrCodeConfigMissing, fmt.Sprintf("missing required key %s in [%s]", name, section)).
		WithContext("field", field).
		WithSuggestions(fmt.Sprintf("Set %s under [%s] or export %s_%s_%s", name, section, envPrefix, section, name))
}
