package store

const schema = `
CREATE TABLE IF NOT EXISTS casks (
    token TEXT PRIMARY KEY,
    description TEXT,
    homepage TEXT,
    deprecated BOOLEAN NOT NULL DEFAULT 0,
    deprecation_reason TEXT
);

CREATE TABLE IF NOT EXISTS cask_names (
    token TEXT NOT NULL,
    name TEXT NOT NULL,
    PRIMARY KEY (token, name),
    FOREIGN KEY (token) REFERENCES casks(token) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS cask_bundle_ids (
    token TEXT NOT NULL,
    bundle_id TEXT NOT NULL,
    PRIMARY KEY (token, bundle_id),
    FOREIGN KEY (token) REFERENCES casks(token) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS catalog_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cask_names_name ON cask_names(name);
CREATE INDEX IF NOT EXISTS idx_cask_bundle_ids_id ON cask_bundle_ids(bundle_id);
`
