package dto

// ReconcileRequest is the JSON body of POST /api/reconcile.
type ReconcileRequest struct {
	SourceA string     `json:"source_a"`
	SourceB string     `json:"source_b"`
	LedgerA [][]string `json:"ledger_a"`
	LedgerB [][]string `json:"ledger_b"`
	Persist bool       `json:"persist"`
}

// DefaultRunListLimit is used when no limit query parameter is given
const DefaultRunListLimit = 20
