package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ZAKI1905/muAlphaSim/internal/storage"
)

// WriteCSV writes the wavefunction as r_m,G,F,P rows.
func WriteCSV(w io.Writer, wf *storage.Wavefunction) error {
	if wf == nil || len(wf.R) == 0 {
		return fmt.Errorf("no data to export")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"r_m", "G", "F", "P"}); err != nil {
		return err
	}
	for i := range wf.R {
		row := []string{
			strconv.FormatFloat(wf.R[i], 'e', 12, 64),
			strconv.FormatFloat(wf.G[i], 'e', 12, 64),
			strconv.FormatFloat(wf.F[i], 'e', 12, 64),
			strconv.FormatFloat(wf.P[i], 'e', 12, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
