// Package logx configures plan-engine's structured logging.
//
// A small wrapper (logx.Logger) on top of zerolog keeps:
//   - Console output readable (short timestamp + short caller)
//   - JSON output structured for log shipping
//   - Tests quiet through Nop()
package logx
