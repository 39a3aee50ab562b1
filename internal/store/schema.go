package store

// schemaVersion is bumped whenever the stored record shape changes; Open
// drops entries written under any other version.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_records (
    fingerprint          TEXT PRIMARY KEY,
    file_path            TEXT NOT NULL,
    record_count         INTEGER NOT NULL,
    records              TEXT NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_file_records_path ON file_records(file_path);
`
