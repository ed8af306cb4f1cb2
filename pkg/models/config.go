package models

// Config mirrors the sections of dwh.cfg
type Config struct {
	Cluster Cluster `ini:"cluster" yaml:"cluster"`
	IAMRole IAMRole `ini:"iam_role" yaml:"iam_role"`
	S3      S3      `ini:"s3" yaml:"s3"`
}

// Cluster holds the warehouse connection parameters
type Cluster struct {
	Host     string `ini:"host" yaml:"host"`
	DBName   string `ini:"db_name" yaml:"db_name"`
	User     string `ini:"db_user" yaml:"db_user"`
	Password string `ini:"db_password" yaml:"-"`
	Port     int    `ini:"db_port" yaml:"db_port"`
	Driver   string `ini:"driver" yaml:"driver,omitempty"`   // "postgres" (lib/pq) or "pgx"
	SSLMode  string `ini:"sslmode" yaml:"sslmode,omitempty"` // defaults to "require"
}

// IAMRole is the role the cluster assumes to read the bulk-load sources
type IAMRole struct {
	ARN string `ini:"arn" yaml:"arn"`
}

// S3 names the bulk-load source locations
type S3 struct {
	LogData     string `ini:"log_data" yaml:"log_data"`
	LogJSONPath string `ini:"log_jsonpath" yaml:"log_jsonpath"`
	SongData    string `ini:"song_data" yaml:"song_data"`
	Region      string `ini:"region" yaml:"region,omitempty"`
}

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"

	DefaultSSLMode = "require"
	DefaultRegion  = "us-west-2"
)
