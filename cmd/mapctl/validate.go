package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

type validateFlags struct {
	level     string
	lat, lon  float64
	domainID  string
	plotID    string
	excludeID string

	local        bool
	parentLat    float64
	parentLon    float64
	siblingAreas []float64
}

func validateCommand(opts *options) *cobra.Command {
	var f validateFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a candidate location against its containment rule",
		Long: `Check a candidate location for a domain, plot or plant.

By default the check runs on the server, which resolves the parent from
storage. With --local the parent center and sibling plot areas are taken
from flags instead.`,
		Example: `  mapctl validate --level plant --plot 3f2c --lat 12.6851 --lon 78.0552
  mapctl validate --local --level plot --lat 12.686 --lon 78.055 \
      --parent-lat 12.6846 --parent-lon 78.0550 --sibling-area 43560 --sibling-area 8712`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := domain.ParseLevel(f.level)
			if err != nil {
				return err
			}
			candidate := domain.GeoPoint{Lat: f.lat, Lon: f.lon}

			var res domain.ValidationResult
			if f.local {
				res, err = validateLocal(cmd, level, candidate, f)
			} else {
				res, err = opts.client().Validate(cmd.Context(), usecases.ValidateRequest{
					Level:     level,
					Candidate: candidate,
					DomainID:  f.domainID,
					PlotID:    f.plotID,
					ExcludeID: f.excludeID,
				})
			}
			if err != nil {
				return err
			}

			out := json.NewEncoder(cmd.OutOrStdout())
			out.SetIndent("", "  ")
			if err := out.Encode(res); err != nil {
				return err
			}
			if res.Outcome == domain.OutcomeRejected {
				return fmt.Errorf("%s", res.ErrorMessage)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.level, "level", "", "Entity level: domain, plot or plant")
	fl.Float64Var(&f.lat, "lat", 0, "Candidate latitude")
	fl.Float64Var(&f.lon, "lon", 0, "Candidate longitude")
	fl.StringVar(&f.domainID, "domain", "", "Parent domain id (plots)")
	fl.StringVar(&f.plotID, "plot", "", "Parent plot id (plants)")
	fl.StringVar(&f.excludeID, "exclude", "", "Id of the entity being edited")
	fl.BoolVar(&f.local, "local", false, "Validate without contacting the API")
	fl.Float64Var(&f.parentLat, "parent-lat", 0, "Parent center latitude (--local)")
	fl.Float64Var(&f.parentLon, "parent-lon", 0, "Parent center longitude (--local)")
	fl.Float64SliceVar(&f.siblingAreas, "sibling-area", nil, "Sibling plot area in square feet (--local, repeatable)")
	_ = cmd.MarkFlagRequired("level")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	cmd.MarkFlagsRequiredTogether("parent-lat", "parent-lon")

	return cmd
}

func validateLocal(cmd *cobra.Command, level domain.Level, candidate domain.GeoPoint, f validateFlags) (domain.ValidationResult, error) {
	var parent domain.ParentContext
	if cmd.Flags().Changed("parent-lat") {
		parent.Center = &domain.GeoPoint{Lat: f.parentLat, Lon: f.parentLon}
	}
	for i, a := range f.siblingAreas {
		parent.Siblings = append(parent.Siblings, domain.Plot{
			ID:       fmt.Sprintf("sibling-%d", i),
			AreaSqFt: domain.Float64(a),
		})
	}
	return usecases.NewHierarchyValidator().ValidateLocation(cmd.Context(), level, candidate, parent)
}
