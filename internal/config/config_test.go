package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"dwhload/internal/testutil"
	apperrors "dwhload/pkg/errors"
	"dwhload/pkg/models"
)

var (
	sampleConfig = testutil.SampleConfigINI
	writeConfig  = testutil.WriteConfig
)

func TestGetConfigFile(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	assert.Equal(t, DefaultConfigFile, GetConfigFile(""))

	t.Setenv(EnvConfigFile, "/etc/dwh/prod.cfg")
	assert.Equal(t, "/etc/dwh/prod.cfg", GetConfigFile(""))
	assert.Equal(t, "local.cfg", GetConfigFile("local.cfg"))
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "dwhcluster.abc123.us-west-2.redshift.amazonaws.com", cfg.Cluster.Host)
	assert.Equal(t, "dwh", cfg.Cluster.DBName)
	assert.Equal(t, "dwhuser", cfg.Cluster.User)
	assert.Equal(t, "Passw0rd", cfg.Cluster.Password)
	assert.Equal(t, 5439, cfg.Cluster.Port)
	assert.Equal(t, "arn:aws:iam::123456789012:role/dwhRole", cfg.IAMRole.ARN)
	assert.Equal(t, "s3://udacity-dend/log_data", cfg.S3.LogData)
	assert.Equal(t, "s3://udacity-dend/log_json_path.json", cfg.S3.LogJSONPath)
	assert.Equal(t, "s3://udacity-dend/song_data", cfg.S3.SongData)

	// Defaults for the optional keys
	assert.Equal(t, models.DriverPostgres, cfg.Cluster.Driver)
	assert.Equal(t, models.DefaultSSLMode, cfg.Cluster.SSLMode)
	assert.Equal(t, models.DefaultRegion, cfg.S3.Region)
}

func TestLoadKeepsCommentCharactersInValues(t *testing.T) {
	content := strings.Replace(sampleConfig, "DB_PASSWORD=Passw0rd", "DB_PASSWORD=Pa55#word;x1", 1)
	content = strings.Replace(content, "SONG_DATA=s3://udacity-dend/song_data", "SONG_DATA=s3://udacity-dend/song#data;v2", 1)

	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	assert.Equal(t, "Pa55#word;x1", cfg.Cluster.Password)
	assert.Equal(t, "s3://udacity-dend/song#data;v2", cfg.S3.SongData)
}

func TestLoadCaseInsensitiveKeys(t *testing.T) {
	content := `[cluster]
host=h
db_name=d
db_user=u
db_password=p
db_port=5439
driver=PGX
[iam_role]
arn=arn:aws:iam::1:role/r
[s3]
log_data=s3://b/log
log_jsonpath=s3://b/paths.json
song_data=s3://b/song
region=eu-west-1
`
	cfg, err := Load(writeConfig(t, content))
	require.NoError(t, err)
	assert.Equal(t, models.DriverPgx, cfg.Cluster.Driver)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("DWH_CLUSTER_DB_PASSWORD", "from-env")
	t.Setenv("DWH_CLUSTER_HOST", "override.example.com")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Cluster.Password)
	assert.Equal(t, "override.example.com", cfg.Cluster.Host)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		code     apperrors.ErrorCode
		contains string
	}{
		{
			name:     "missing section",
			content:  "[CLUSTER]\nHOST=h\nDB_NAME=d\nDB_USER=u\nDB_PASSWORD=p\nDB_PORT=5439\n",
			code:     apperrors.ErrCodeConfigMissing,
			contains: "ARN in [IAM_ROLE]",
		},
		{
			name:     "missing host",
			content:  "[CLUSTER]\nDB_NAME=d\n",
			code:     apperrors.ErrCodeConfigMissing,
			contains: "HOST in [CLUSTER]",
		},
		{
			name: "port not a number",
			content: `[CLUSTER]
HOST=h
DB_NAME=d
DB_USER=u
DB_PASSWORD=p
DB_PORT=fifty
[IAM_ROLE]
ARN=a
[S3]
LOG_DATA=s3://b/l
LOG_JSONPATH=s3://b/p
SONG_DATA=s3://b/s
`,
			code:     apperrors.ErrCodeConfigInvalid,
			contains: "is not a number",
		},
		{
			name: "not an s3 location",
			content: `[CLUSTER]
HOST=h
DB_NAME=d
DB_USER=u
DB_PASSWORD=p
DB_PORT=5439
[IAM_ROLE]
ARN=a
[S3]
LOG_DATA=/tmp/log
LOG_JSONPATH=s3://b/p
SONG_DATA=s3://b/s
`,
			code:     apperrors.ErrCodeConfigInvalid,
			contains: "must be an s3:// location",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.GetErrorCode(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cfg"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigRead, apperrors.GetErrorCode(err))
}

func TestLoadPasswordFromKeyring(t *testing.T) {
	keyring.MockInit()

	content := `[CLUSTER]
HOST=h
DB_NAME=d
DB_USER=keyringuser
DB_PASSWORD=
DB_PORT=5439
[IAM_ROLE]
ARN=a
[S3]
LOG_DATA=s3://b/l
LOG_JSONPATH=s3://b/p
SONG_DATA=s3://b/s
`
	path := writeConfig(t, content)

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.GetErrorCode(err))
	assert.Contains(t, err.Error(), "no keyring entry")

	require.NoError(t, StorePassword("keyringuser", "s3cret"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Cluster.Password)
}

func TestValidate(t *testing.T) {
	valid := func() *models.Config {
		return &models.Config{
			Cluster: models.Cluster{
				Host: "h", DBName: "d", User: "u", Password: "p", Port: 5439,
				Driver: models.DriverPostgres, SSLMode: "require",
			},
			IAMRole: models.IAMRole{ARN: "arn"},
			S3: models.S3{
				LogData: "s3://b/l", LogJSONPath: "s3://b/p", SongData: "s3://b/s", Region: "us-west-2",
			},
		}
	}

	tests := []struct {
		name     string
		mutate   func(*models.Config)
		errorMsg string
	}{
		{name: "valid", mutate: func(*models.Config) {}},
		{name: "missing password", mutate: func(c *models.Config) { c.Cluster.Password = "" }, errorMsg: "DB_PASSWORD"},
		{name: "port out of range", mutate: func(c *models.Config) { c.Cluster.Port = 70000 }, errorMsg: "out of range"},
		{name: "unknown driver", mutate: func(c *models.Config) { c.Cluster.Driver = "mysql" }, errorMsg: "unsupported driver"},
		{name: "song data not s3", mutate: func(c *models.Config) { c.S3.SongData = "song_data" }, errorMsg: "S3.SONG_DATA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
