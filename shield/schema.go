package shield

import "database/sql"

// Schema defines the SQLite tables used by shield middlewares:
//   - rate_limits: per-path rate limiting rules (used by RateLimiter)
//   - maintenance: global maintenance mode flag (used by MaintenanceMode)
//
// The default rules are seeded with INSERT OR IGNORE, so operator edits
// survive restarts. Endpoint '*' applies to every path.
const Schema = `
CREATE TABLE IF NOT EXISTS rate_limits (
    endpoint        TEXT    NOT NULL,
    window_seconds  INTEGER NOT NULL,
    max_requests    INTEGER NOT NULL,
    skip_successful INTEGER NOT NULL DEFAULT 0,
    enabled         INTEGER NOT NULL DEFAULT 1,
    message         TEXT    NOT NULL DEFAULT 'Too many requests from this IP, please try again later.',
    PRIMARY KEY (endpoint, window_seconds)
);

CREATE TABLE IF NOT EXISTS maintenance (
    id      INTEGER PRIMARY KEY CHECK (id = 1),
    active  INTEGER NOT NULL DEFAULT 0,
    message TEXT NOT NULL DEFAULT 'Service under maintenance, please try again shortly.'
);

INSERT OR IGNORE INTO maintenance (id, active) VALUES (1, 0);

INSERT OR IGNORE INTO rate_limits (endpoint, window_seconds, max_requests, skip_successful, message) VALUES
    ('*', 900, 100, 0, 'Too many requests from this IP, please try again later.'),
    ('/analyze', 900, 10, 1, 'Too many analysis requests from this IP. Please wait before requesting more accessibility analyses.'),
    ('/analyze', 3600, 25, 0, 'Hourly analysis limit exceeded. This helps us maintain service quality for all users.'),
    ('/simulate-vision', 900, 10, 0, 'Too many vision simulation requests from this IP. Please wait before requesting more simulations.');
`

// Init creates the shield tables if they don't exist and seeds the default
// rules.
func Init(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
