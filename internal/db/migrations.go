package db

// migration is one versioned schema step. All statements of a migration run in
// a single transaction together with the schema_version insert.
type migration struct {
	version    int
	statements []string
}

func migrationsFor(driver Driver) []migration {
	if driver == DriverPostgres {
		return postgresMigrations
	}
	return sqliteMigrations
}

var sqliteMigrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS candidates (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				email TEXT,
				linkedin_url TEXT,
				profile_file TEXT,
				skills TEXT NOT NULL DEFAULT '[]',
				preferences TEXT NOT NULL DEFAULT '{}',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS jobs (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				title TEXT NOT NULL,
				company TEXT,
				linkedin_url TEXT,
				spec_file TEXT,
				requirements TEXT NOT NULL DEFAULT '[]',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS matches (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				candidate_id TEXT NOT NULL REFERENCES candidates(id),
				job_id TEXT NOT NULL REFERENCES jobs(id),
				score REAL NOT NULL,
				source TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				candidate_notes TEXT,
				hiring_notes TEXT,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_matches_job ON matches(job_id)`,
			`CREATE INDEX IF NOT EXISTS idx_matches_candidate ON matches(candidate_id)`,
			`CREATE TABLE IF NOT EXISTS outreach_queue (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				target_type TEXT NOT NULL,
				target_name TEXT NOT NULL,
				target_linkedin_url TEXT,
				message TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				sent_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_outreach_status ON outreach_queue(status)`,
			`CREATE TABLE IF NOT EXISTS agent_messages (
				seq INTEGER PRIMARY KEY AUTOINCREMENT,
				id TEXT NOT NULL UNIQUE,
				from_agent TEXT NOT NULL,
				to_agent TEXT NOT NULL,
				message_type TEXT NOT NULL,
				content TEXT NOT NULL,
				metadata TEXT NOT NULL DEFAULT '{}',
				read INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_inbox ON agent_messages(to_agent, read)`,
		},
	},
}

var postgresMigrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS candidates (
				seq BIGSERIAL PRIMARY KEY,
				id TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				email TEXT,
				linkedin_url TEXT,
				profile_file TEXT,
				skills TEXT NOT NULL DEFAULT '[]',
				preferences TEXT NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS jobs (
				seq BIGSERIAL PRIMARY KEY,
				id TEXT NOT NULL UNIQUE,
				title TEXT NOT NULL,
				company TEXT,
				linkedin_url TEXT,
				spec_file TEXT,
				requirements TEXT NOT NULL DEFAULT '[]',
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS matches (
				seq BIGSERIAL PRIMARY KEY,
				id TEXT NOT NULL UNIQUE,
				candidate_id TEXT NOT NULL REFERENCES candidates(id),
				job_id TEXT NOT NULL REFERENCES jobs(id),
				score DOUBLE PRECISION NOT NULL,
				source TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				candidate_notes TEXT,
				hiring_notes TEXT,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_matches_job ON matches(job_id)`,
			`CREATE INDEX IF NOT EXISTS idx_matches_candidate ON matches(candidate_id)`,
			`CREATE TABLE IF NOT EXISTS outreach_queue (
				seq BIGSERIAL PRIMARY KEY,
				id TEXT NOT NULL UNIQUE,
				target_type TEXT NOT NULL,
				target_name TEXT NOT NULL,
				target_linkedin_url TEXT,
				message TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				sent_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_outreach_status ON outreach_queue(status)`,
			`CREATE TABLE IF NOT EXISTS agent_messages (
				seq BIGSERIAL PRIMARY KEY,
				id TEXT NOT NULL UNIQUE,
				from_agent TEXT NOT NULL,
				to_agent TEXT NOT NULL,
				message_type TEXT NOT NULL,
				content TEXT NOT NULL,
				metadata TEXT NOT NULL DEFAULT '{}',
				read BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_inbox ON agent_messages(to_agent, read)`,
		},
	},
}
