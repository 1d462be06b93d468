// Package tradestats derives a trading-performance dashboard from a ledger of
// closed trades and a few account level figures.
//
// The core functionalities include:
//   - Ledger Management: recording closed trades, open positions, capital,
//     charges and other credits/debits in a chronological JSONL ledger.
//   - Broker Import: reading P&L statements exported as CSV, or arbitrary
//     broker JSON through JSONPath expressions.
//   - Metrics Derivation: a pure function turning trades and account figures
//     into summary rows, metric rows, a win/loss series and a cumulative P&L
//     series, with mathematically undefined ratios reported as [Undefined].
//
// Rendering the read model is the job of the renderer package; this package
// never does any I/O besides the codecs.
package tradestats
