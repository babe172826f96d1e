// Package mapview assembles everything the map screen draws in one call.
package mapview

import (
	"context"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/events"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/markers"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/reports"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"golang.org/x/sync/errgroup"
)

// LayerLimit caps each map layer.
const LayerLimit = 50

type AreaView struct {
	Name       string     `json:"name"`
	Creation   geo.Bounds `json:"creation_bounds"`
	Navigation geo.Bounds `json:"navigation_bounds"`
	Center     geo.Point  `json:"center"`
	Zoom       int        `json:"zoom"`
}

type Overview struct {
	Area    AreaView         `json:"area"`
	Reports []reports.Report `json:"reports"`
	Events  []events.Event   `json:"events"`
	Markers []markers.Marker `json:"markers"`
}

type MapService struct {
	area    geo.Area
	reports *reports.ReportService
	events  *events.EventService
	markers *markers.MarkerService
}

func NewMapService(deps *apps.Deps) *MapService {
	return &MapService{
		area:    deps.Area,
		reports: reports.NewReportService(deps),
		events:  events.NewEventService(deps),
		markers: markers.NewMarkerService(deps.DB, deps.Area),
	}
}

// Overview loads the three layers concurrently. reportStatus optionally
// narrows the report layer.
func (s *MapService) Overview(ctx context.Context, reportStatus string) (*Overview, error) {
	out := &Overview{
		Area: AreaView{
			Name:       s.area.Name,
			Creation:   s.area.Creation,
			Navigation: s.area.Navigation,
			Center:     s.area.Center(),
			Zoom:       s.area.Zoom,
		},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.reports.List(ctx, reports.ListFilter{Status: reportStatus, Limit: LayerLimit})
		out.Reports = r
		return err
	})
	g.Go(func() error {
		e, err := s.events.List(ctx, LayerLimit)
		out.Events = e
		return err
	})
	g.Go(func() error {
		m, err := s.markers.List(ctx, LayerLimit)
		out.Markers = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
