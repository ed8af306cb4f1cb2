package catalog

import (
	sq "github.com/Masterminds/squirrel"
)

// Converts the epoch-millisecond ts column of staging_events to a timestamp.
const eventTime = "timestamp 'epoch' + (ts/1000) * interval '1 second'"

func extract(part string) string {
	return "extract(" + part + " from (" + eventTime + "))"
}

type insertDef struct {
	name    string
	table   string
	builder sq.InsertBuilder
}

// Order matters: users needs users_max_ts, and songplays references every dimension.
func insertDefinitions() []insertDef {
	return []insertDef{
		{
			name:  "users_max_ts_insert",
			table: tableUsersMaxTS,
			builder: sq.Insert(tableUsersMaxTS).
				Columns("userid", "mx_ts").
				Select(sq.Select("userid", "max(ts) AS mx_ts").
					From(tableStagingEvents).
					Where("userid IS NOT NULL").
					GroupBy("userid")),
		},
		{
			name:  "users_insert",
			table: tableUsers,
			builder: sq.Insert(tableUsers).
				Columns("user_id", "first_name", "last_name", "gender", "level").
				Select(sq.Select("e.userid", "e.firstname", "e.lastname", "e.gender", "e.level").
					From(tableStagingEvents + " e").
					InnerJoin(tableUsersMaxTS + " mts ON (e.userid = mts.userid AND e.ts = mts.mx_ts)")),
		},
		{
			name:  "songs_insert",
			table: tableSongs,
			builder: sq.Insert(tableSongs).
				Columns("song_id", "title", "artist_id", "year", "duration").
				Select(sq.Select("song_id", "title", "artist_id", "year", "duration").
					From(tableStagingSongs)),
		},
		{
			name:  "artists_insert",
			table: tableArtists,
			builder: sq.Insert(tableArtists).
				Columns("artist_id", "name", "location", "latitude", "longitude").
				Select(sq.Select("artist_id", "artist_name", "artist_location", "artist_latitude", "artist_longitude").
					Distinct().
					From(tableStagingSongs)),
		},
		{
			name:  "time_insert",
			table: tableTime,
			builder: sq.Insert(tableTime).
				Columns("start_time", "hour", "day", "week", "month", "year", "weekday").
				Select(sq.Select(
					"("+eventTime+")",
					extract("hr"),
					extract("day"),
					extract("week"),
					extract("month"),
					extract("year"),
					extract("weekday"),
				).
					Distinct().
					From(tableStagingEvents)),
		},
		{
			name:  "songplays_insert",
			table: tableSongplays,
			builder: sq.Insert(tableSongplays).
				Columns("start_time", "user_id", "level", "song_id", "artist_id", "session_id", "location", "user_agent").
				Select(sq.Select(
					"timestamp 'epoch' + (e.ts/1000) * interval '1 second'",
					"e.userid", "e.level", "s.song_id", "s.artist_id", "e.sessionid", "e.location", "e.useragent",
				).
					Distinct().
					From(tableStagingEvents + " e").
					InnerJoin(tableStagingSongs + " s ON (s.title = e.song AND s.duration = e.length AND s.artist_name = e.artist)").
					Where("e.page = 'NextSong'")),
		},
	}
}

func insertStatements() ([]Statement, error) {
	defs := insertDefinitions()
	stmts := make([]Statement, 0, len(defs))

	for _, def := range defs {
		query, _, err := def.builder.ToSql()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, Statement{
			Name:  def.name,
			Table: def.table,
			SQL:   query + ";",
		})
	}

	return stmts, nil
}
