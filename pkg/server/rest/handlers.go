package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/server/rest/service"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/snap"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/util"
	"github.com/pkg/errors"
)

type NavigationService interface {
	ShortestPath(ctx context.Context, srcLat, srcLon, dstLat, dstLon float64) (service.RouteResult, error)
	NearestVertex(ctx context.Context, lat, lon, radius float64) (datastructure.Vertex, error)
	SnapToRoad(ctx context.Context, lat, lon, radius float64) (snap.Snap, error)
	VerticesInBoundingBox(ctx context.Context, box datastructure.BoundingBox) ([]datastructure.Vertex, error)
	BoundingBox(ctx context.Context) (datastructure.BoundingBox, error)
}

type NavigationHandler struct {
	svc      NavigationService
	metrics  *Metrics
	validate *validator.Validate
	trans    ut.Translator
}

func NavigatorRouter(r *chi.Mux, svc NavigationService, m *Metrics) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	validate := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &NavigationHandler{svc: svc, metrics: m, validate: validate, trans: trans}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Get("/route", handler.ShortestPath)
			r.Get("/nearest", handler.NearestVertex)
			r.Get("/snap", handler.SnapToRoad)
			r.Get("/vertices", handler.VerticesInBoundingBox)
			r.Get("/bbox", handler.BoundingBox)
		})
	})
}

// queryFloats reads the named query parameters. A missing or malformed one is an error.
func queryFloats(r *http.Request, names ...string) ([]float64, error) {
	q := r.URL.Query()
	out := make([]float64, len(names))
	for i, name := range names {
		raw := q.Get(name)
		if raw == "" {
			return nil, errors.Errorf("missing query parameter %s", name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Errorf("query parameter %s is not a number: %q", name, raw)
		}
		out[i] = v
	}
	return out, nil
}

// validateRequest renders the translated validation errors and reports whether the request was valid.
func (h *NavigationHandler) validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := h.validate.Struct(req); err != nil {
		render.Render(w, r, ErrValidation(err, translateError(err, h.trans)))
		return false
	}
	return true
}

// Coord model info
//
//	@Description	model untuk koordinat
type Coord struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func toCoord(c datastructure.Coordinate) Coord {
	return Coord{Lat: c.LatDegrees(), Lon: c.LonDegrees()}
}

type ShortestPathRequest struct {
	Source      Coord
	Destination Coord
}

type InstructionResponse struct {
	Instruction string  `json:"instruction"`
	Sign        int     `json:"sign"`
	StreetName  string  `json:"street_name,omitempty"`
	Ref         string  `json:"ref,omitempty"`
	Point       Coord   `json:"point"`
	Distance    float64 `json:"distance"`
}

type QueryStatsResponse struct {
	SettledVertices   int `json:"settled_vertices"`
	RelaxedEdges      int `json:"relaxed_edges"`
	StalledVertices   int `json:"stalled_vertices"`
	StallPropagations int `json:"stall_propagations"`
	MeetingUpdates    int `json:"meeting_updates"`
	UnpackedEdges     int `json:"unpacked_edges"`
}

// ShortestPathResponse model info
//
//	@Description	response body untuk shortest path query
type ShortestPathResponse struct {
	Path         string                `json:"path"`
	Distance     float64               `json:"distance"`
	Weight       uint64                `json:"weight"`
	Source       Coord                 `json:"source"`
	Destination  Coord                 `json:"destination"`
	Instructions []InstructionResponse `json:"instructions"`
	Stats        QueryStatsResponse    `json:"stats"`
}

func RenderShortestPathResponse(res service.RouteResult) *ShortestPathResponse {
	instructions := make([]InstructionResponse, 0, len(res.Instructions))
	for _, in := range res.Instructions {
		instructions = append(instructions, InstructionResponse{
			Instruction: in.GetTurnDescription(),
			Sign:        in.Sign,
			StreetName:  in.Name,
			Ref:         in.Ref,
			Point:       toCoord(in.Point),
			Distance:    util.RoundFloat(in.Distance, 2),
		})
	}
	st := res.Route.Stats
	return &ShortestPathResponse{
		Path:         res.Route.Polyline,
		Distance:     util.RoundFloat(res.Route.DistanceMeters, 2),
		Weight:       res.Route.Weight,
		Source:       toCoord(res.Source.Coordinate),
		Destination:  toCoord(res.Destination.Coordinate),
		Instructions: instructions,
		Stats: QueryStatsResponse{
			SettledVertices:   st.SettledVertices,
			RelaxedEdges:      st.RelaxedEdges,
			StalledVertices:   st.StalledVertices,
			StallPropagations: st.StallPropagations,
			MeetingUpdates:    st.MeetingUpdates,
			UnpackedEdges:     st.UnpackedEdges,
		},
	}
}

// ShortestPath
//
//	@Summary		shortest path query pakai bidirectional dijkstra di contraction hierarchies
//	@Tags			navigations
//	@Param			src_lat	query	number	true	"source latitude"
//	@Param			src_lon	query	number	true	"source longitude"
//	@Param			dst_lat	query	number	true	"destination latitude"
//	@Param			dst_lon	query	number	true	"destination longitude"
//	@Produce		application/json
//	@Router			/api/route [get]
//	@Success		200	{object}	ShortestPathResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *NavigationHandler) ShortestPath(w http.ResponseWriter, r *http.Request) {
	vals, err := queryFloats(r, "src_lat", "src_lon", "dst_lat", "dst_lon")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	req := ShortestPathRequest{
		Source:      Coord{Lat: vals[0], Lon: vals[1]},
		Destination: Coord{Lat: vals[2], Lon: vals[3]},
	}
	if !h.validateRequest(w, r, req) {
		return
	}

	res, err := h.svc.ShortestPath(r.Context(), req.Source.Lat, req.Source.Lon, req.Destination.Lat, req.Destination.Lon)
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
	if h.metrics != nil {
		h.metrics.routeWeight.Observe(float64(res.Route.Weight))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderShortestPathResponse(res))
}

type NearestRequest struct {
	Coord
	Radius float64 `validate:"gte=0,lte=50000"`
}

type VertexResponse struct {
	ID         uint32 `json:"id"`
	OriginalID int64  `json:"original_id"`
	Coord      Coord  `json:"coordinate"`
}

func renderVertex(v datastructure.Vertex) VertexResponse {
	return VertexResponse{ID: uint32(v.ID), OriginalID: v.OriginalID, Coord: toCoord(v.Coordinate)}
}

// NearestVertex
//
//	@Summary		snap koordinat ke vertex terdekat
//	@Tags			navigations
//	@Param			lat		query	number	true	"latitude"
//	@Param			lon		query	number	true	"longitude"
//	@Param			radius	query	number	false	"search radius in meters"
//	@Produce		application/json
//	@Router			/api/nearest [get]
//	@Success		200	{object}	VertexResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) NearestVertex(w http.ResponseWriter, r *http.Request) {
	req, ok := h.nearestRequest(w, r)
	if !ok {
		return
	}

	v, err := h.svc.NearestVertex(r.Context(), req.Lat, req.Lon, req.Radius)
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, renderVertex(v))
}

// nearestRequest parses lat, lon and the optional radius, rendering the error when they are invalid.
func (h *NavigationHandler) nearestRequest(w http.ResponseWriter, r *http.Request) (NearestRequest, bool) {
	vals, err := queryFloats(r, "lat", "lon")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return NearestRequest{}, false
	}
	req := NearestRequest{Coord: Coord{Lat: vals[0], Lon: vals[1]}}
	if r.URL.Query().Has("radius") {
		radius, err := queryFloats(r, "radius")
		if err != nil {
			render.Render(w, r, ErrInvalidRequest(err))
			return NearestRequest{}, false
		}
		req.Radius = radius[0]
	}
	if !h.validateRequest(w, r, req) {
		return NearestRequest{}, false
	}
	return req, true
}

type SnapResponse struct {
	Projection Coord   `json:"projection"`
	Distance   float64 `json:"distance"`
	StreetName string  `json:"street_name,omitempty"`
	Ref        string  `json:"ref,omitempty"`
	Vertex     uint32  `json:"vertex"`
}

// SnapToRoad
//
//	@Summary		proyeksikan koordinat ke jalan terdekat
//	@Tags			navigations
//	@Param			lat		query	number	true	"latitude"
//	@Param			lon		query	number	true	"longitude"
//	@Param			radius	query	number	false	"search radius in meters"
//	@Produce		application/json
//	@Router			/api/snap [get]
//	@Success		200	{object}	SnapResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *NavigationHandler) SnapToRoad(w http.ResponseWriter, r *http.Request) {
	req, ok := h.nearestRequest(w, r)
	if !ok {
		return
	}

	s, err := h.svc.SnapToRoad(r.Context(), req.Lat, req.Lon, req.Radius)
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, SnapResponse{
		Projection: toCoord(s.Projection),
		Distance:   util.RoundFloat(s.Distance, 2),
		StreetName: s.Edge.Name,
		Ref:        s.Edge.Ref,
		Vertex:     uint32(s.Vertex),
	})
}

type BoundingBoxRequest struct {
	Min Coord
	Max Coord
}

type BoundingBoxResponse struct {
	Min Coord `json:"min"`
	Max Coord `json:"max"`
}

func renderBox(b datastructure.BoundingBox) BoundingBoxResponse {
	return BoundingBoxResponse{
		Min: toCoord(datastructure.Coordinate{Lat: b.MinLat, Lon: b.MinLon}),
		Max: toCoord(datastructure.Coordinate{Lat: b.MaxLat, Lon: b.MaxLon}),
	}
}

type VerticesResponse struct {
	Vertices []VertexResponse `json:"vertices"`
}

// VerticesInBoundingBox
//
//	@Summary		semua vertex di dalam bounding box
//	@Tags			navigations
//	@Param			min_lat	query	number	true	"south"
//	@Param			min_lon	query	number	true	"west"
//	@Param			max_lat	query	number	true	"north"
//	@Param			max_lon	query	number	true	"east"
//	@Produce		application/json
//	@Router			/api/vertices [get]
//	@Success		200	{object}	VerticesResponse
//	@Failure		400	{object}	ErrResponse
func (h *NavigationHandler) VerticesInBoundingBox(w http.ResponseWriter, r *http.Request) {
	vals, err := queryFloats(r, "min_lat", "min_lon", "max_lat", "max_lon")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	req := BoundingBoxRequest{
		Min: Coord{Lat: vals[0], Lon: vals[1]},
		Max: Coord{Lat: vals[2], Lon: vals[3]},
	}
	if !h.validateRequest(w, r, req) {
		return
	}

	vs, err := h.svc.VerticesInBoundingBox(r.Context(),
		datastructure.NewBoundingBox(req.Min.Lat, req.Min.Lon, req.Max.Lat, req.Max.Lon))
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
	resp := VerticesResponse{Vertices: make([]VertexResponse, 0, len(vs))}
	for _, v := range vs {
		resp.Vertices = append(resp.Vertices, renderVertex(v))
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// BoundingBox
//
//	@Summary		bounding box dari seluruh graph
//	@Tags			navigations
//	@Produce		application/json
//	@Router			/api/bbox [get]
//	@Success		200	{object}	BoundingBoxResponse
func (h *NavigationHandler) BoundingBox(w http.ResponseWriter, r *http.Request) {
	box, err := h.svc.BoundingBox(r.Context())
	if err != nil {
		render.Render(w, r, ErrRender(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, renderBox(box))
}
