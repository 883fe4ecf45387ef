package repository

const CreateStateTableSQL = `
CREATE TABLE IF NOT EXISTS app_state (
    key        TEXT PRIMARY KEY,
    payload    JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const SelectStateSQL = `SELECT payload FROM app_state WHERE key = $1`

const UpsertStateSQL = `
INSERT INTO app_state (key, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
`
