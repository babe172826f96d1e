package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps/markers"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMarkerCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marker",
		Short: "Manage the points of interest shown on the map",
	}
	cmd.AddCommand(newMarkerAddCmd(e), newMarkerRmCmd(e), newMarkerListCmd(e))
	return cmd
}

func (e *env) markerService() (*markers.MarkerService, error) {
	db, err := e.openDB(e.cfg)
	if err != nil {
		return nil, err
	}
	area, err := e.area()
	if err != nil {
		return nil, err
	}
	return markers.NewMarkerService(db, area), nil
}

func newMarkerAddCmd(e *env) *cobra.Command {
	var req markers.CreateMarkerRequest
	var lat, lng float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a marker inside the navigation bounds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := e.markerService()
			if err != nil {
				return err
			}
			req.Lat, req.Lng = &lat, &lng

			marker, err := svc.Create(cmd.Context(), nil, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %q at %.6f,%.6f\n", marker.ID, marker.Title, marker.Lat, marker.Lng)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "marker title")
	cmd.Flags().StringVar(&req.Description, "description", "", "marker description")
	cmd.Flags().StringVar(&req.Category, "category", "", "marker category")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func newMarkerRmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid marker id %q", args[0])
			}
			svc, err := e.markerService()
			if err != nil {
				return err
			}

			marker, err := svc.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("marker %s: %w", id, err)
			}
			if err := svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s %q\n", marker.ID, marker.Title)
			return nil
		},
	}
}

func newMarkerListCmd(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List markers, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := e.markerService()
			if err != nil {
				return err
			}
			list, err := svc.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tLAT\tLNG")
			for _, m := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.6f\t%.6f\n", m.ID, m.Title, m.Category, m.Lat, m.Lng)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", markers.DefaultLimit, "maximum number of markers")
	return cmd
}
