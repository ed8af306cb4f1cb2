package catalog

const (
	tableStagingEvents = "staging_events"
	tableStagingSongs  = "staging_songs"
	tableUsersMaxTS    = "users_max_ts"
	tableSongplays     = "songplays"
	tableUsers         = "users"
	tableSongs         = "songs"
	tableArtists       = "artists"
	tableTime          = "time"
)

// Order does not matter: every drop is independent and idempotent.
func dropStatements() []Statement {
	tables := []string{
		tableUsersMaxTS,
		tableStagingEvents,
		tableStagingSongs,
		tableSongplays,
		tableUsers,
		tableSongs,
		tableArtists,
		tableTime,
	}

	stmts := make([]Statement, 0, len(tables))
	for _, table := range tables {
		stmts = append(stmts, Statement{
			Name:  table + "_drop",
			Table: table,
			SQL:   "DROP TABLE IF EXISTS " + table + ";",
		})
	}
	return stmts
}

// Primary and foreign keys are informational on Redshift; the planner still uses them.
// Staging and helper tables are BACKUP NO since every run rebuilds them.

const stagingEventsCreate = `CREATE TABLE staging_events (
    artist        varchar,
    auth          varchar,
    firstname     varchar,
    gender        char,
    iteminsession int,
    lastname      varchar,
    length        float,
    level         varchar,
    location      varchar,
    method        varchar,
    page          varchar,
    registration  bigint,
    sessionid     int,
    song          varchar DISTKEY,
    status        int,
    ts            bigint,
    useragent     varchar,
    userid        int
)
BACKUP NO
DISTSTYLE KEY;`

// Small and slow-growing, so replicated to every node.
const stagingSongsCreate = `CREATE TABLE staging_songs (
    num_songs        int,
    artist_id        char(19),
    artist_latitude  float,
    artist_longitude float,
    artist_location  varchar,
    artist_name      varchar,
    song_id          char(19),
    title            varchar,
    duration         float,
    year             int
)
BACKUP NO
DISTSTYLE ALL;`

// Latest event timestamp per user; users joins on it to keep only the newest attributes.
const usersMaxTSCreate = `CREATE TABLE users_max_ts (
    userid int    SORTKEY NOT NULL,
    mx_ts  bigint NOT NULL
)
BACKUP NO
DISTSTYLE ALL;`

const usersCreate = `CREATE TABLE users (
    user_id    int     SORTKEY NOT NULL PRIMARY KEY,
    first_name varchar NOT NULL,
    last_name  varchar NOT NULL,
    gender     char,
    level      varchar NOT NULL
)
DISTSTYLE ALL;`

// song_id distribution matches songplays so the join is co-located.
const songsCreate = `CREATE TABLE songs (
    song_id   char(19) SORTKEY DISTKEY NOT NULL PRIMARY KEY,
    title     varchar  NOT NULL,
    artist_id char(19) NOT NULL,
    year      int,
    duration  float    NOT NULL
)
DISTSTYLE KEY;`

const artistsCreate = `CREATE TABLE artists (
    artist_id char(19) SORTKEY NOT NULL PRIMARY KEY,
    name      varchar  NOT NULL,
    location  varchar,
    latitude  float,
    longitude float
)
DISTSTYLE ALL;`

const timeCreate = `CREATE TABLE time (
    start_time timestamp SORTKEY NOT NULL PRIMARY KEY,
    hour       int       NOT NULL,
    day        int       NOT NULL,
    week       int       NOT NULL,
    month      int       NOT NULL,
    year       int       NOT NULL,
    weekday    int       NOT NULL
)
DISTSTYLE ALL;`

const songplaysCreate = `CREATE TABLE songplays (
    songplay_id int       IDENTITY(1, 1) PRIMARY KEY,
    start_time  timestamp NOT NULL REFERENCES time(start_time),
    user_id     int       NOT NULL REFERENCES users(user_id),
    level       varchar   NOT NULL,
    song_id     char(19)  SORTKEY DISTKEY NOT NULL REFERENCES songs(song_id),
    artist_id   char(19)  NOT NULL REFERENCES artists(artist_id),
    session_id  int       NOT NULL,
    location    varchar,
    user_agent  varchar   NOT NULL
)
DISTSTYLE KEY;`

// songplays references time, users, songs and artists, so it must come last.
func createStatements() []Statement {
	return []Statement{
		{Name: "staging_events_create", Table: tableStagingEvents, SQL: stagingEventsCreate},
		{Name: "staging_songs_create", Table: tableStagingSongs, SQL: stagingSongsCreate},
		{Name: "users_max_ts_create", Table: tableUsersMaxTS, SQL: usersMaxTSCreate},
		{Name: "users_create", Table: tableUsers, SQL: usersCreate},
		{Name: "songs_create", Table: tableSongs, SQL: songsCreate},
		{Name: "artists_create", Table: tableArtists, SQL: artistsCreate},
		{Name: "time_create", Table: tableTime, SQL: timeCreate},
		{Name: "songplays_create", Table: tableSongplays, SQL: songplaysCreate},
	}
}
