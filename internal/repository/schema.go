package repository

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  tax_id TEXT NOT NULL DEFAULT '',
  iban TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS suppliers_tax_id_idx ON suppliers(tax_id);
CREATE INDEX IF NOT EXISTS suppliers_iban_idx ON suppliers(iban);

CREATE TABLE IF NOT EXISTS supplier_patterns (
  supplier_id TEXT NOT NULL,
  field_name TEXT NOT NULL,
  pattern TEXT NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (supplier_id, field_name)
);
`

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
  id UUID PRIMARY KEY,
  name TEXT NOT NULL,
  tax_id TEXT NOT NULL DEFAULT '',
  iban TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS suppliers_tax_id_idx ON suppliers(tax_id)`,
	`CREATE INDEX IF NOT EXISTS suppliers_iban_idx ON suppliers(iban)`,
	`CREATE TABLE IF NOT EXISTS supplier_patterns (
  supplier_id UUID NOT NULL,
  field_name TEXT NOT NULL,
  pattern TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (supplier_id, field_name)
)`,
}
