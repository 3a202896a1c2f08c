package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	scenario TEXT NOT NULL,
	status TEXT NOT NULL,
	halt_day INTEGER NOT NULL DEFAULT 0,
	halt_reason TEXT NOT NULL DEFAULT '',
	started DATETIME NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	days INTEGER NOT NULL,
	liability TEXT NOT NULL,
	policy TEXT NOT NULL,
	initial_value REAL NOT NULL,
	final_value REAL NOT NULL,
	pnl REAL NOT NULL,
	directional REAL NOT NULL,
	gamma REAL NOT NULL,
	vega REAL NOT NULL,
	theta REAL NOT NULL,
	rho REAL NOT NULL,
	residual REAL NOT NULL,
	transaction_cost REAL NOT NULL,
	funding REAL NOT NULL,
	trades INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS days (
	run_id TEXT NOT NULL,
	day INTEGER NOT NULL,
	date TEXT NOT NULL,
	traded INTEGER NOT NULL,
	spot REAL NOT NULL,
	volatility REAL NOT NULL,
	overnight_rate REAL NOT NULL,
	short_rate REAL NOT NULL,
	long_rate REAL NOT NULL,
	credit_spread REAL NOT NULL,
	spread_bps REAL NOT NULL,
	liability_price REAL NOT NULL,
	liability_delta REAL NOT NULL,
	liability_gamma REAL NOT NULL,
	liability_vega REAL NOT NULL,
	liability_theta REAL NOT NULL,
	liability_rho REAL NOT NULL,
	hedge_price REAL NOT NULL,
	hedge_delta REAL NOT NULL,
	hedge_gamma REAL NOT NULL,
	hedge_vega REAL NOT NULL,
	hedge_theta REAL NOT NULL,
	hedge_rho REAL NOT NULL,
	hedge_quantity REAL NOT NULL,
	vega_hedge_quantity REAL NOT NULL,
	gamma_hedge_quantity REAL NOT NULL,
	net_delta REAL NOT NULL,
	net_gamma REAL NOT NULL,
	net_vega REAL NOT NULL,
	trade_quantity REAL NOT NULL,
	vega_trade_quantity REAL NOT NULL,
	gamma_trade_quantity REAL NOT NULL,
	trade_cost REAL NOT NULL,
	cash REAL NOT NULL,
	funding REAL NOT NULL,
	value REAL NOT NULL,
	pnl_directional REAL NOT NULL,
	pnl_gamma REAL NOT NULL,
	pnl_vega REAL NOT NULL,
	pnl_theta REAL NOT NULL,
	pnl_rho REAL NOT NULL,
	pnl_residual REAL NOT NULL,
	pnl_total REAL NOT NULL,
	cum_pnl REAL NOT NULL,
	cum_transaction_cost REAL NOT NULL,
	cum_funding REAL NOT NULL,
	PRIMARY KEY (run_id, day)
);

CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);
`
