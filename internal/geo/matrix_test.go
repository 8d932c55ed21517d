package geo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldroute/internal/model"
)

func TestHaversineKnownDistance(t *testing.T) {
	paris := model.Coordinates{Lat: 48.8566, Lon: 2.3522}
	london := model.Coordinates{Lat: 51.5074, Lon: -0.1278}

	d := Haversine(paris, london)
	assert.InDelta(t, 343.6, d, 2.0)
	assert.InDelta(t, d, Haversine(london, paris), 1e-9)
	assert.Zero(t, Haversine(paris, paris))
}

func TestBuildMatrixOrdering(t *testing.T) {
	office := model.Coordinates{Lat: 52.08, Lon: 4.3}
	techs := []model.Technician{
		{ID: "t2", Home: model.Coordinates{Lat: 52.02, Lon: 4.0}, StartsFrom: model.WorkLocationHome, FinishesAt: model.WorkLocationOffice, Office: &office},
		{ID: "t1", Home: model.Coordinates{Lat: 52.01, Lon: 4.0}, StartsFrom: model.WorkLocationHome, FinishesAt: model.WorkLocationHome},
	}
	visits := []model.VisitInstance{
		{ID: "v1", SiteID: "site_b", Location: model.Coordinates{Lat: 52.05, Lon: 4.1}},
		{ID: "v2", SiteID: "site_a", Location: model.Coordinates{Lat: 52.06, Lon: 4.2}},
		{ID: "v3", SiteID: "site_b", Location: model.Coordinates{Lat: 52.05, Lon: 4.1}},
	}

	m := BuildMatrix(techs, visits)
	ids := []string{}
	for _, l := range m.Locations() {
		ids = append(ids, l.ID)
	}
	// Technicians sorted by id first (start, then a distinct end), then
	// distinct sites sorted by id.
	require.Equal(t, []string{"tech_t1_start", "tech_t2_start", "tech_t2_end", "site_a", "site_b"}, ids)
}

func TestMatrixParallelFillMatchesSequentialReference(t *testing.T) {
	// Enough locations to spread rows across several fill workers.
	visits := make([]model.VisitInstance, 0, 40)
	for i := 0; i < 40; i++ {
		visits = append(visits, model.VisitInstance{
			ID:     fmt.Sprintf("v%d", i),
			SiteID: fmt.Sprintf("site_%02d", i),
			Location: model.Coordinates{
				Lat: 50.0 + float64(i)*0.017,
				Lon: 4.0 + float64(i%7)*0.023,
			},
		})
	}
	techs := []model.Technician{
		{ID: "t1", Home: model.Coordinates{Lat: 52.0, Lon: 4.0}},
	}

	m := BuildMatrix(techs, visits)
	locs := m.Locations()
	require.Len(t, locs, 41)
	for i := range locs {
		for j := range locs {
			assert.InDelta(t, Haversine(locs[i].Coord, locs[j].Coord), m.At(i, j), 1e-9)
		}
	}
}

func TestMatrixSymmetryAndLookup(t *testing.T) {
	techs := []model.Technician{
		{ID: "t1", Home: model.Coordinates{Lat: 52.0, Lon: 4.0}},
	}
	visits := []model.VisitInstance{
		{ID: "v1", SiteID: "site_a", Location: model.Coordinates{Lat: 52.01, Lon: 4.0}},
		{ID: "v2", SiteID: "site_b", Location: model.Coordinates{Lat: 52.02, Lon: 4.05}},
	}

	m := BuildMatrix(techs, visits)
	n := len(m.Locations())
	for i := 0; i < n; i++ {
		assert.Zero(t, m.At(i, i))
		for j := 0; j < n; j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
		}
	}

	d, err := m.Distance("tech_t1_start", "site_a")
	require.NoError(t, err)
	assert.InDelta(t, 1.11, d, 0.05)

	assert.True(t, m.Has("site_b"))
	assert.False(t, m.Has("site_c"))
	_, err = m.Distance("site_a", "site_c")
	require.ErrorIs(t, err, ErrUnknownLocation)
}
