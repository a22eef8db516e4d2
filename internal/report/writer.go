package report

import (
	"PaymentLedger/internal/ledger"
	fpmath "PaymentLedger/internal/math"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Header is the first row of every snapshot
var Header = []string{"client", "available", "held", "total", "locked"}

// WriteCSV writes one row per account in the order given, amounts formatted
// with exactly four fractional digits.
func WriteCSV(w io.Writer, accounts []ledger.AccountSnapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(Header))
	for _, acct := range accounts {
		row[0] = strconv.FormatUint(uint64(acct.Client), 10)
		row[1] = fpmath.FormatAmount(acct.Available, fpmath.OutputConfig)
		row[2] = fpmath.FormatAmount(acct.Held, fpmath.OutputConfig)
		row[3] = fpmath.FormatAmount(acct.Total, fpmath.OutputConfig)
		row[4] = strconv.FormatBool(acct.Locked)

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write client %d: %w", acct.Client, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return nil
}
