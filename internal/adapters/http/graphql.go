package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/farmmap/internal/core/domain"
	"github.com/samirrijal/farmmap/internal/core/usecases"
)

var boundsArgs = graphql.FieldConfigArgument{
	"swLng": &graphql.ArgumentConfig{Type: graphql.Float},
	"swLat": &graphql.ArgumentConfig{Type: graphql.Float},
	"neLng": &graphql.ArgumentConfig{Type: graphql.Float},
	"neLat": &graphql.ArgumentConfig{Type: graphql.Float},
}

// argsBounds reads the optional bounding box arguments.
func argsBounds(args map[string]any) (*domain.ViewportBounds, error) {
	var (
		vals    [4]float64
		present int
	)
	for i, name := range boundsParams {
		if v, ok := args[name].(float64); ok {
			vals[i] = v
			present++
		}
	}
	switch present {
	case 0:
		return nil, nil
	case 4:
	default:
		return nil, fmt.Errorf("%w: swLng, swLat, neLng and neLat must be given together", domain.ErrInvalidBounds)
	}
	b := &domain.ViewportBounds{
		SW: domain.GeoPoint{Lon: vals[0], Lat: vals[1]},
		NE: domain.GeoPoint{Lon: vals[2], Lat: vals[3]},
	}
	return b, b.Validate()
}

func argString(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func withArgs(base graphql.FieldConfigArgument, extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	out := graphql.FieldConfigArgument{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func featureProp(name string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		f, ok := p.Source.(domain.PointFeature)
		if !ok {
			return nil, nil
		}
		return f.Properties[name], nil
	}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	domainType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Domain",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"organization_id": &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"description":     &graphql.Field{Type: graphql.String},
			"location":        &graphql.Field{Type: geoPointType},
			"area_sq_ft":      &graphql.Field{Type: graphql.Float},
		},
	})

	plotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Plot",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"domain_id":       &graphql.Field{Type: graphql.String},
			"organization_id": &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"location":        &graphql.Field{Type: geoPointType},
			"area_sq_ft":      &graphql.Field{Type: graphql.Float},
			"soil_type":       &graphql.Field{Type: graphql.String},
			"irrigation_type": &graphql.Field{Type: graphql.String},
		},
	})

	plantType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Plant",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"plot_id":      &graphql.Field{Type: graphql.String},
			"domain_id":    &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
			"type":         &graphql.Field{Type: graphql.String},
			"variety":      &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
			"health":       &graphql.Field{Type: graphql.String},
			"growth_stage": &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: geoPointType},
		},
	})

	validationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ValidationResult",
		Fields: graphql.Fields{
			"outcome":       &graphql.Field{Type: graphql.String},
			"valid":         &graphql.Field{Type: graphql.Boolean},
			"level":         &graphql.Field{Type: graphql.String},
			"distance_km":   &graphql.Field{Type: graphql.Float},
			"radius_km":     &graphql.Field{Type: graphql.Float},
			"radius_source": &graphql.Field{Type: graphql.String},
			"error_message": &graphql.Field{Type: graphql.String},
		},
	})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"kind":       &graphql.Field{Type: graphql.String, Resolve: featureProp("kind")},
			"label":      &graphql.Field{Type: graphql.String, Resolve: featureProp("displayLabel")},
			"pointCount": &graphql.Field{Type: graphql.Int, Resolve: featureProp("point_count")},
			"lon": &graphql.Field{Type: graphql.Float, Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(domain.PointFeature).Geometry.Coordinates[0], nil
			}},
			"lat": &graphql.Field{Type: graphql.Float, Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(domain.PointFeature).Geometry.Coordinates[1], nil
			}},
		},
	})

	collection := func(pick func(domain.MapFeatures) domain.FeatureCollection) *graphql.Field {
		return &graphql.Field{
			Type: graphql.NewList(featureType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return pick(p.Source.(domain.MapFeatures)).Features, nil
			},
		}
	}
	mapFeaturesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapFeatures",
		Fields: graphql.Fields{
			"zoom":     &graphql.Field{Type: graphql.Float},
			"domains":  collection(func(m domain.MapFeatures) domain.FeatureCollection { return m.Domains }),
			"plots":    collection(func(m domain.MapFeatures) domain.FeatureCollection { return m.Plots }),
			"plants":   collection(func(m domain.MapFeatures) domain.FeatureCollection { return m.Plants }),
			"clusters": collection(func(m domain.MapFeatures) domain.FeatureCollection { return m.Clusters }),
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"domains": &graphql.Field{
				Type:        graphql.NewList(domainType),
				Description: "List domains, optionally of one organization",
				Args: graphql.FieldConfigArgument{
					"organizationId": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Domains.List(p.Context, argString(p.Args, "organizationId"))
				},
			},
			"plots": &graphql.Field{
				Type:        graphql.NewList(plotType),
				Description: "List plots by organization and/or domain",
				Args: graphql.FieldConfigArgument{
					"organizationId": &graphql.ArgumentConfig{Type: graphql.String},
					"domainId":       &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Plots.List(p.Context, argString(p.Args, "organizationId"), argString(p.Args, "domainId"))
				},
			},
			"plant": &graphql.Field{
				Type:        plantType,
				Description: "Get a plant by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Plants.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"plantsInBounds": &graphql.Field{
				Type:        graphql.NewList(plantType),
				Description: "Located plants inside a bounding box; no box returns all",
				Args:        boundsArgs,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					b, err := argsBounds(p.Args)
					if err != nil {
						return nil, err
					}
					return deps.Plants.Mapview(p.Context, b)
				},
			},
			"mapFeatures": &graphql.Field{
				Type:        mapFeaturesType,
				Description: "Zoom-gated feature sets for one viewport",
				Args: withArgs(boundsArgs, graphql.FieldConfigArgument{
					"zoom":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"domainId": &graphql.ArgumentConfig{Type: graphql.String},
					"plotId":   &graphql.ArgumentConfig{Type: graphql.String},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"cluster":  &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				}),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					b, err := argsBounds(p.Args)
					if err != nil {
						return nil, err
					}
					cluster, _ := p.Args["cluster"].(bool)
					return deps.Map.Features(p.Context, usecases.FeaturesQuery{
						Bounds: b,
						Zoom:   p.Args["zoom"].(float64),
						Filters: domain.FilterState{
							DomainID: argString(p.Args, "domainId"),
							PlotID:   argString(p.Args, "plotId"),
							Category: argString(p.Args, "category"),
						},
						Cluster: cluster,
					})
				},
			},
			"validateLocation": &graphql.Field{
				Type:        validationType,
				Description: "Check a candidate placement against its containment zone",
				Args: graphql.FieldConfigArgument{
					"level":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"domainId":  &graphql.ArgumentConfig{Type: graphql.String},
					"plotId":    &graphql.ArgumentConfig{Type: graphql.String},
					"excludeId": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					level, err := domain.ParseLevel(argString(p.Args, "level"))
					if err != nil {
						return nil, err
					}
					return deps.Validation.Validate(p.Context, usecases.ValidateRequest{
						Level:     level,
						Candidate: domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)},
						DomainID:  argString(p.Args, "domainId"),
						PlotID:    argString(p.Args, "plotId"),
						ExcludeID: argString(p.Args, "excludeId"),
					})
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
