package storage

// Columns shared by the SQL sinks, in insert order.
const listingColumns = "source, title, year, make, model, price, mileage, parse_confidence"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS vehicle_listings (
	id BIGSERIAL PRIMARY KEY,
	source TEXT NOT NULL,
	title TEXT NOT NULL,
	year INTEGER,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	price BIGINT,
	mileage BIGINT,
	parse_confidence TEXT NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_vehicle_listings_source ON vehicle_listings(source);
CREATE INDEX IF NOT EXISTS idx_vehicle_listings_make ON vehicle_listings(make);
CREATE INDEX IF NOT EXISTS idx_vehicle_listings_price ON vehicle_listings(price);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS vehicle_listings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	title TEXT NOT NULL,
	year INTEGER,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	price INTEGER,
	mileage INTEGER,
	parse_confidence TEXT NOT NULL,
	scraped_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_vehicle_listings_source ON vehicle_listings(source);
CREATE INDEX IF NOT EXISTS idx_vehicle_listings_make ON vehicle_listings(make);
`
