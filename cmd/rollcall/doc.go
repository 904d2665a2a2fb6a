// Command rollcall is the operator CLI for the newcomer attendance ledger:
// it aggregates the external log into per-person views, appends new rows,
// and records placement decisions.
package main
