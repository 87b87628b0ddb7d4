package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/forcelayout/internal/layout"
)

// WriteCSV writes one row per node: id, label, x, y, vx, vy, mass.
func WriteCSV(w io.Writer, snap *layout.Snapshot, g *layout.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "label", "x", "y", "vx", "vy", "mass"}); err != nil {
		return err
	}
	for i, n := range snap.Nodes {
		v := snap.Velocities[i]
		row := []string{
			strconv.FormatInt(int64(n.ID), 10),
			g.Label(i),
			formatFloat(n.X),
			formatFloat(n.Y),
			formatFloat(v.X),
			formatFloat(v.Y),
			formatFloat(snap.Mass[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
