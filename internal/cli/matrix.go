package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"fieldroute/internal/geo"
)

type MatrixCmd struct {
	Input string `arg:"" help:"Plan request JSON file." type:"existingfile"`
}

// Run prints the pairwise distance table for every location in the
// request. Useful for sanity-checking coordinates before a solve.
func (c *MatrixCmd) Run(ctx *Context) error {
	req, err := readPlanRequest(c.Input)
	if err != nil {
		return err
	}
	_, techs, visits, err := req.ToModel()
	if err != nil {
		return err
	}

	m := geo.BuildMatrix(techs, visits)
	locs := m.Locations()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "km")
	for _, l := range locs {
		fmt.Fprintf(w, "\t%s", l.ID)
	}
	fmt.Fprintln(w)
	for i, from := range locs {
		fmt.Fprint(w, from.ID)
		for j := range locs {
			fmt.Fprintf(w, "\t%.1f", m.At(i, j))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
