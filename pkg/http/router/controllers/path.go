package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/gridnav/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

// maxBatchBodyBytes bounds a POST /paths body, enough for the largest allowed batch.
const maxBatchBodyBytes = 1 << 20

type pathAPI struct {
	pathService PathService
	log         *zap.Logger
	validator   *validator.Validate
	trans       ut.Translator
}

func New(pathService PathService, log *zap.Logger) *pathAPI {
	validate, trans := newValidator()
	return &pathAPI{
		pathService: pathService,
		log:         log,
		validator:   validate,
		trans:       trans,
	}
}

func (api *pathAPI) Routes(group *helper.RouteGroup) {
	group.GET("/map", api.mapInfo)
	group.GET("/path", api.shortestPath)
	group.POST("/paths", api.shortestPaths)
}

func (api *pathAPI) mapInfo(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	width, height := api.pathService.MapSize()
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": mapInfoResponse{Width: width, Height: height}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *pathAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request shortestPathRequest
		err     error
	)

	query := r.URL.Query()

	request.StartX, err = strconv.Atoi(query.Get("sx"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("sx is required and must be a valid int"))
		return
	}
	request.StartY, err = strconv.Atoi(query.Get("sy"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("sy is required and must be a valid int"))
		return
	}
	request.GoalX, err = strconv.Atoi(query.Get("gx"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("gx is required and must be a valid int"))
		return
	}
	request.GoalY, err = strconv.Atoi(query.Get("gy"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("gy is required and must be a valid int"))
		return
	}
	if unpack := query.Get("unpack"); unpack != "" {
		request.Unpack, err = strconv.ParseBool(unpack)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("unpack must be a valid bool"))
			return
		}
	}

	if !api.validate(w, r, request) {
		return
	}

	sol, err := api.pathService.ShortestPath(r.Context(), request.start(), request.goal(), request.Unpack)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewShortestPathResponse(sol)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *pathAPI) shortestPaths(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request batchRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBatchBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.errorResponse(w, r, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", err.Error())
			return
		}
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if !api.validate(w, r, request) {
		return
	}

	results := api.pathService.ShortestPaths(r.Context(), request.toQueries(), request.Unpack)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewBatchResponse(results)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
