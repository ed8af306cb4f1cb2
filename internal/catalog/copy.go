package catalog

import (
	"fmt"
	"strings"

	"dwhload/pkg/models"
)

const copyTemplate = `COPY %s FROM '%s'
CREDENTIALS 'aws_iam_role=%s'
FORMAT AS JSON '%s'
REGION '%s';`

// The event logs use camelCase keys, so they need a JSONPaths file; song
// metadata keys already match the column names and load with 'auto'.
func copyStatements(roleARN string, s3 models.S3) []Statement {
	region := s3.Region
	if region == "" {
		region = models.DefaultRegion
	}

	return []Statement{
		{
			Name:  "staging_events_copy",
			Table: tableStagingEvents,
			SQL:   buildCopy(tableStagingEvents, s3.LogData, roleARN, s3.LogJSONPath, region),
		},
		{
			Name:  "staging_songs_copy",
			Table: tableStagingSongs,
			SQL:   buildCopy(tableStagingSongs, s3.SongData, roleARN, "auto", region),
		},
	}
}

func buildCopy(table, source, roleARN, jsonFormat, region string) string {
	return fmt.Sprintf(copyTemplate,
		table,
		quoteLiteral(source),
		quoteLiteral(roleARN),
		quoteLiteral(jsonFormat),
		quoteLiteral(region),
	)
}

// quoteLiteral escapes a value for use inside a single-quoted SQL literal
func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
