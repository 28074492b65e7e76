package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"Antenna/internal/config"
	"Antenna/internal/middleware"
	"Antenna/internal/service"
)

// RadarHandler отдаёт страницу раздела и сводки радаров.
type RadarHandler struct {
	RadarService *service.RadarService
	Logger       *zap.SugaredLogger
	Config       *config.Config
}

// NewRadarHandler создаёт хендлер радаров
func NewRadarHandler(radarService *service.RadarService, logger *zap.SugaredLogger, cfg *config.Config) *RadarHandler {
	return &RadarHandler{RadarService: radarService, Logger: logger, Config: cfg}
}

var landingPage = template.Must(template.New("problem").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="csrf-token" content="{{.Token}}">
<title>Bug Reporter</title>
</head>
<body>
<form id="problem" method="post" action="/problem">
<input type="hidden" name="csrftokencheck" value="{{.Token}}">
</form>
<ul>{{range .Sections}}<li>{{.}}</li>{{end}}</ul>
</body>
</html>
`))

// Landing отдаёт HTML со свежим CSRF-токеном текущей сессии.
func (h *RadarHandler) Landing(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.GetSessionFromContext(r.Context())
	token, err := middleware.IssueCSRFToken(s.ID, h.Config.AuthSecret)
	if err != nil {
		h.Logger.Errorw("cannot issue csrf token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = landingPage.Execute(w, struct {
		Token    string
		Sections []string
	}{Token: token, Sections: service.KnownSections})
}

// SummaryDTO — сводка радара в ответе.
type SummaryDTO struct {
	ID                int64     `json:"id"`
	State             string    `json:"state"`
	Title             string    `json:"title"`
	Component         string    `json:"component"`
	RequiresAttention bool      `json:"requiresAttention"`
	Hidden            bool      `json:"hidden"`
	Description       string    `json:"description"`
	Originated        time.Time `json:"originated"`
}

// SummariesResponse — страница сводок.
type SummariesResponse struct {
	RowStart    int          `json:"rowStart"`
	RowsInCache int          `json:"rowsInCache"`
	Summaries   []SummaryDTO `json:"summaries"`
}

// описание в сводке усекается
const summaryDescriptionLimit = 200

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// Summaries отдаёт страницу раздела: ?section=&rowStart=&rowCount=
func (h *RadarHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	rowStart, err := intParam(r, "rowStart")
	if err != nil {
		http.Error(w, "invalid rowStart", http.StatusBadRequest)
		return
	}
	rowCount, err := intParam(r, "rowCount")
	if err != nil {
		http.Error(w, "invalid rowCount", http.StatusBadRequest)
		return
	}

	page, err := h.RadarService.Page(r.Context(), userID, r.URL.Query().Get("section"), rowStart, rowCount)
	switch {
	case errors.Is(err, service.ErrUnknownSection):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, service.ErrInvalidRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.Logger.Errorw("list section failed", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := SummariesResponse{
		RowStart:    page.RowStart,
		RowsInCache: page.RowsInCache,
		Summaries:   make([]SummaryDTO, 0, len(page.Radars)),
	}
	for _, rd := range page.Radars {
		desc := rd.Description
		if runes := []rune(desc); len(runes) > summaryDescriptionLimit {
			desc = string(runes[:summaryDescriptionLimit])
		}
		resp.Summaries = append(resp.Summaries, SummaryDTO{
			ID:                rd.ID,
			State:             rd.State,
			Title:             rd.Title,
			Component:         rd.Component,
			RequiresAttention: rd.RequiresAttention,
			Hidden:            rd.Hidden,
			Description:       desc,
			Originated:        rd.OriginatedAt.UTC(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Errorw("encode summaries", "error", err)
	}
}
