package geo

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"fieldroute/internal/model"
)

// ErrUnknownLocation is returned when a distance lookup names an id that is
// not part of the matrix. It signals a programming error, never a degraded
// default.
var ErrUnknownLocation = errors.New("geo: unknown location")

// Kind classifies a matrix location.
type Kind int

const (
	KindTechnicianBase Kind = iota
	KindServiceSite
)

// Location is one entry in the distance matrix.
type Location struct {
	ID           string
	Coord        model.Coordinates
	Kind         Kind
	TechnicianID string
}

// Matrix is a dense symmetric great-circle distance matrix over every
// technician start/end location and every distinct visit site. It is built
// once per run and shared read-only across all daily solves.
type Matrix struct {
	locs  []Location
	dist  [][]float64
	index map[string]int
}

// BuildMatrix assembles the location list in deterministic order and fills
// the matrix. Technicians come first, sorted ascending by id (start
// location, then end location when it differs), followed by distinct visit
// sites sorted ascending by site id.
func BuildMatrix(technicians []model.Technician, visits []model.VisitInstance) *Matrix {
	techs := append([]model.Technician(nil), technicians...)
	sort.Slice(techs, func(i, j int) bool { return techs[i].ID < techs[j].ID })

	locs := make([]Location, 0, 2*len(techs)+len(visits))
	for _, t := range techs {
		locs = append(locs, Location{
			ID:           t.StartLocationID(),
			Coord:        t.StartLocation(),
			Kind:         KindTechnicianBase,
			TechnicianID: t.ID,
		})
		if t.StartsFrom != t.FinishesAt {
			locs = append(locs, Location{
				ID:           t.EndLocationID(),
				Coord:        t.EndLocation(),
				Kind:         KindTechnicianBase,
				TechnicianID: t.ID,
			})
		}
	}

	seen := map[string]bool{}
	siteIDs := []string{}
	siteCoord := map[string]model.Coordinates{}
	for _, v := range visits {
		if seen[v.SiteID] {
			continue
		}
		seen[v.SiteID] = true
		siteIDs = append(siteIDs, v.SiteID)
		siteCoord[v.SiteID] = v.Location
	}
	sort.Strings(siteIDs)
	for _, id := range siteIDs {
		locs = append(locs, Location{ID: id, Coord: siteCoord[id], Kind: KindServiceSite})
	}

	m := &Matrix{locs: locs, index: make(map[string]int, len(locs))}
	for i, l := range locs {
		m.index[l.ID] = i
	}
	m.fill()
	return m
}

// fill computes the upper triangle in parallel. Each worker owns whole
// rows, and the task that computes (i,j) also writes (j,i), so every cell
// is written exactly once.
func (m *Matrix) fill() {
	n := len(m.locs)
	m.dist = make([][]float64, n)
	for i := range m.dist {
		m.dist[i] = make([]float64, n)
	}
	if n < 2 {
		return
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	rows := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range rows {
				for j := i + 1; j < n; j++ {
					km := Haversine(m.locs[i].Coord, m.locs[j].Coord)
					m.dist[i][j] = km
					m.dist[j][i] = km
				}
			}
		}()
	}
	for i := 0; i < n-1; i++ {
		rows <- i
	}
	close(rows)
	wg.Wait()
}

// Locations returns the ordered location list.
func (m *Matrix) Locations() []Location {
	return m.locs
}

// Has reports whether the id is part of the matrix.
func (m *Matrix) Has(id string) bool {
	_, ok := m.index[id]
	return ok
}

// Index returns the matrix index for a location id.
func (m *Matrix) Index(id string) (int, error) {
	i, ok := m.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLocation, id)
	}
	return i, nil
}

// At returns the distance in kilometers between two location indices.
func (m *Matrix) At(i, j int) float64 {
	return m.dist[i][j]
}

// Distance returns the distance in kilometers between two location ids.
func (m *Matrix) Distance(fromID, toID string) (float64, error) {
	i, err := m.Index(fromID)
	if err != nil {
		return 0, err
	}
	j, err := m.Index(toID)
	if err != nil {
		return 0, err
	}
	return m.dist[i][j], nil
}
