package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Nota0515/bhakti/internal/model"
	"github.com/Nota0515/bhakti/internal/repository"
	"github.com/Nota0515/bhakti/internal/wizard"
)

// MandalHandler serves the public directory and the registration
// endpoint. Registration replays the client wizard server-side: the
// same step machine validates each slice of the record before the
// single atomic write.
type MandalHandler struct {
	Mandals  *repository.MandalRepo
	Notifier wizard.Notifier
}

func NewMandalHandler(m *repository.MandalRepo, n wizard.Notifier) *MandalHandler {
	return &MandalHandler{Mandals: m, Notifier: n}
}

// mandalView is the public projection of a mandal for the map.
type mandalView struct {
	ID                uint64 `json:"id"`
	Name              string `json:"name"`
	EstablishedYear   string `json:"established_year,omitempty"`
	Location          string `json:"location"`
	Address           string `json:"address"`
	Description       string `json:"description,omitempty"`
	Specialties       string `json:"specialties,omitempty"`
	UpiID             string `json:"upi_id"`
	DeliveryAvailable bool   `json:"delivery_available"`
	PandalTheme       string `json:"pandal_theme,omitempty"`
	CulturalPrograms  string `json:"cultural_programs,omitempty"`
	PreviousAwards    string `json:"previous_awards,omitempty"`
}

func viewOf(m model.Mandal) mandalView {
	return mandalView{
		ID:                m.ID,
		Name:              m.Name,
		EstablishedYear:   m.EstablishedYear,
		Location:          m.Location,
		Address:           m.Address,
		Description:       m.Description,
		Specialties:       m.Specialties,
		UpiID:             m.UpiID,
		DeliveryAvailable: m.DeliveryAvailable,
		PandalTheme:       m.PandalTheme,
		CulturalPrograms:  m.CulturalPrograms,
		PreviousAwards:    m.PreviousAwards,
	}
}

// List handles GET /v1/mandals (public, cached).
func (h *MandalHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	mandals, err := h.Mandals.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	items := make([]mandalView, 0, len(mandals))
	for _, m := range mandals {
		items = append(items, viewOf(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/mandals/:id (public).
func (h *MandalHandler) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid mandal id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Mandals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mandal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": viewOf(m)})
}

type registerMandalReq struct {
	Name              string `json:"name"`
	EstablishedYear   string `json:"established_year"`
	Location          string `json:"location"`
	Address           string `json:"address"`
	ContactName       string `json:"contact_name"`
	ContactPhone      string `json:"contact_phone"`
	UpiID             string `json:"upi_id"`
	Description       string `json:"description"`
	Specialties       string `json:"specialties"`
	DeliveryAvailable bool   `json:"delivery_available"`
	PandalTheme       string `json:"pandal_theme"`
	CulturalPrograms  string `json:"cultural_programs"`
	PreviousAwards    string `json:"previous_awards"`
}

// Register handles POST /v1/mandals (protected). The wizard walks all
// four steps with the submitted record; a validation failure on any
// step is reported with the missing field names and nothing persists.
func (h *MandalHandler) Register(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req registerMandalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	w := wizard.New(h.Mandals, h.Notifier)
	w.SetBasics(req.Name, req.EstablishedYear, req.Location, req.Address)
	w.SetContact(req.ContactName, req.ContactPhone)
	w.SetOfferings(req.UpiID, req.Specialties, req.DeliveryAvailable)
	w.SetExtras(req.Description, req.PandalTheme, req.CulturalPrograms, req.PreviousAwards)
	for w.Step() < wizard.TotalSteps {
		if err := w.Next(); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, err := w.Submit(ctx, uid)
	if err != nil {
		if errors.Is(err, wizard.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}
