package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"dwhload/internal/observability"
	"dwhload/pkg/models"
)

// SampleConfigINI is a complete dwh.cfg
const SampleConfigINI = `[CLUSTER]
HOST=dwhcluster.abc123.us-west-2.redshift.amazonaws.com
DB_NAME=dwh
DB_USER=dwhuser
DB_PASSWORD=Passw0rd
DB_PORT=5439

[IAM_ROLE]
ARN=arn:aws:iam::123456789012:role/dwhRole

[S3]
LOG_DATA=s3://udacity-dend/log_data
LOG_JSONPATH=s3://udacity-dend/log_json_path.json
SONG_DATA=s3://udacity-dend/song_data
`

// Config returns the configuration SampleConfigINI loads to
func Config() *models.Config {
	return &models.Config{
		Cluster: models.Cluster{
			Host:     "dwhcluster.abc123.us-west-2.redshift.amazonaws.com",
			DBName:   "dwh",
			User:     "dwhuser",
			Password: "Passw0rd",
			Port:     5439,
			Driver:   models.DriverPostgres,
			SSLMode:  models.DefaultSSLMode,
		},
		IAMRole: models.IAMRole{
			ARN: "arn:aws:iam::123456789012:role/dwhRole",
		},
		S3: models.S3{
			LogData:     "s3://udacity-dend/log_data",
			LogJSONPath: "s3://udacity-dend/log_json_path.json",
			SongData:    "s3://udacity-dend/song_data",
			Region:      models.DefaultRegion,
		},
	}
}

// WriteConfig writes content to dwh.cfg in a fresh temp dir and returns its path
func WriteConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dwh.cfg")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config %s: %v", path, err)
	}
	return path
}

// Logger returns a logger writing into the returned buffer
func Logger() (*observability.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return observability.NewLogger(observability.LoggerConfig{
		Level:  observability.DebugLevel,
		Output: &buf,
	}), &buf
}
