package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	guide *service.GuideService
	repo  domain.CatalogRepository
}

// NewHandler creates a new handler
func NewHandler(guide *service.GuideService, repo domain.CatalogRepository) *Handler {
	return &Handler{
		guide: guide,
		repo:  repo,
	}
}

type positionRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type stepRequest struct {
	Heading float64 `json:"heading"`
	Meters  float64 `json:"meters"`
}

type attendingRequest struct {
	Attending bool `json:"attending"`
}

type arrivalRequest struct {
	Choice string `json:"choice"`
}

// maxStepMeters bounds one keyboard step
const maxStepMeters = 100.0

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// serviceError maps engine errors onto HTTP status codes
func serviceError(err error) error {
	switch {
	case errors.Is(err, service.ErrUnknownFacility),
		errors.Is(err, service.ErrNoEvent),
		errors.Is(err, service.ErrNoSession):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidChoice):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrActiveNavigation),
		errors.Is(err, service.ErrSessionFinished),
		errors.Is(err, service.ErrNotArrived),
		errors.Is(err, service.ErrEmptyRoute),
		errors.Is(err, service.ErrNothingRecommended),
		errors.Is(err, service.ErrNothingToResume),
		errors.Is(err, service.ErrAlreadySelected),
		errors.Is(err, service.ErrSelectionFull):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
}

// parseCategories reads a comma separated category filter
func parseCategories(raw string) ([]domain.Category, error) {
	if raw == "" {
		return nil, nil
	}
	var out []domain.Category
	for _, part := range strings.Split(raw, ",") {
		c := domain.Category(strings.ToUpper(strings.TrimSpace(part)))
		if !c.Valid() {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Unknown category %q", part))
		}
		out = append(out, c)
	}
	return out, nil
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	catalog := "ok"
	if err := h.repo.Health(c.Context()); err != nil {
		status = "degraded"
		catalog = err.Error()
	}
	return c.JSON(fiber.Map{
		"status":           status,
		"service":          "zooguide-backend",
		"version":          "1.0.0",
		"catalog":          catalog,
		"snapshot_version": h.guide.Snapshot().Version,
	})
}

// ListFacilities returns the facility browser rows
func (h *Handler) ListFacilities(c *fiber.Ctx) error {
	categories, err := parseCategories(c.Query("category"))
	if err != nil {
		return err
	}
	sortBy, err := service.ParseSortKey(c.Query("sort"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rows := h.guide.Facilities(service.ListOptions{Categories: categories, SortBy: sortBy})
	return c.JSON(fiber.Map{
		"success": true,
		"data":    rows,
		"count":   len(rows),
	})
}

// GetFacility returns one facility
func (h *Handler) GetFacility(c *fiber.Ctx) error {
	row, err := h.guide.Facility(c.Params("id"))
	if err != nil {
		return serviceError(err)
	}
	return ok(c, row)
}

// GetCongestionBands returns the congestion legend
func (h *Handler) GetCongestionBands(c *fiber.Ctx) error {
	return ok(c, domain.CongestionBands())
}

// GetWaypoints returns the curated path points for the map overlay
func (h *Handler) GetWaypoints(c *fiber.Ctx) error {
	return ok(c, h.guide.Waypoints())
}

// ListEvents returns the day's schedule
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	return ok(c, h.guide.Events())
}

// GetFeasibility checks whether the visitor can make a facility's event
func (h *Handler) GetFeasibility(c *fiber.Ctx) error {
	check, err := h.guide.Feasibility(c.Params("facilityId"))
	if err != nil {
		return serviceError(err)
	}
	return ok(c, check)
}

// GetPosition returns the visitor position
func (h *Handler) GetPosition(c *fiber.Ctx) error {
	return ok(c, h.guide.Position())
}

// UpdatePosition feeds a position fix to the guide
func (h *Handler) UpdatePosition(c *fiber.Ctx) error {
	var req positionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Latitude == nil || req.Longitude == nil {
		return fiber.NewError(fiber.StatusBadRequest, "latitude and longitude are required")
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		return fiber.NewError(fiber.StatusBadRequest, "Coordinates out of range")
	}

	return ok(c, h.guide.UpdatePosition(domain.LatLng{Latitude: *req.Latitude, Longitude: *req.Longitude}))
}

// StepPosition moves the visitor along a heading
func (h *Handler) StepPosition(c *fiber.Ctx) error {
	var req stepRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Meters <= 0 || req.Meters > maxStepMeters {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("meters must be in (0, %.0f]", maxStepMeters))
	}
	return ok(c, h.guide.StepPosition(req.Heading, req.Meters))
}

// GetVisible returns facilities in front of the camera
func (h *Handler) GetVisible(c *fiber.Ctx) error {
	categories, err := parseCategories(c.Query("category"))
	if err != nil {
		return err
	}
	return ok(c, h.guide.Visible(c.QueryFloat("heading", 0), categories))
}

// GetSelection returns the selected destinations
func (h *Handler) GetSelection(c *fiber.Ctx) error {
	return ok(c, h.guide.Selection())
}

// AddDestination selects a facility
func (h *Handler) AddDestination(c *fiber.Ctx) error {
	sel, err := h.guide.AddDestination(c.Params("id"))
	if err != nil {
		return serviceError(err)
	}
	return ok(c, sel)
}

// RemoveDestination deselects a facility
func (h *Handler) RemoveDestination(c *fiber.Ctx) error {
	sel, removed := h.guide.RemoveDestination(c.Params("id"))
	if !removed {
		return fiber.NewError(fiber.StatusNotFound, "Destination is not selected")
	}
	return ok(c, sel)
}

// ClearSelection deselects everything
func (h *Handler) ClearSelection(c *fiber.Ctx) error {
	sel, _ := h.guide.ClearSelection()
	return ok(c, sel)
}

// SetAttending records the event decision for a selected destination
func (h *Handler) SetAttending(c *fiber.Ctx) error {
	var req attendingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	sel, changed := h.guide.SetAttending(c.Params("id"), req.Attending)
	if !changed {
		return fiber.NewError(fiber.StatusNotFound, "Destination is not selected")
	}
	return ok(c, sel)
}

// ForceRecommend overrides the eligibility gate for a destination
func (h *Handler) ForceRecommend(c *fiber.Ctx) error {
	sel, changed := h.guide.ForceRecommend(c.Params("id"))
	if !changed {
		return fiber.NewError(fiber.StatusNotFound, "Destination is not selected")
	}
	return ok(c, sel)
}

// UnforceRecommend drops the override
func (h *Handler) UnforceRecommend(c *fiber.Ctx) error {
	sel, changed := h.guide.UnforceRecommend(c.Params("id"))
	if !changed {
		return fiber.NewError(fiber.StatusNotFound, "Destination is not selected")
	}
	return ok(c, sel)
}

// GetRecommendation returns the ordered route for the current selection.
// data is null when nothing is selected.
func (h *Handler) GetRecommendation(c *fiber.Ctx) error {
	return ok(c, h.guide.Recommendation())
}

// GetPath returns a walking leg from the visitor to a facility
func (h *Handler) GetPath(c *fiber.Ctx) error {
	path, err := h.guide.Leg(c.Params("facilityId"))
	if err != nil {
		return serviceError(err)
	}
	return ok(c, path)
}

// StartNavigation begins walking the recommended route
func (h *Handler) StartNavigation(c *fiber.Ctx) error {
	view, err := h.guide.StartNavigation()
	if err != nil {
		return serviceError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    view,
	})
}

// GetNavigation returns the session view
func (h *Handler) GetNavigation(c *fiber.Ctx) error {
	view, err := h.guide.Navigation()
	if err != nil {
		return serviceError(err)
	}
	return ok(c, view)
}

// GetGuidance returns the AR arrow for a device heading
func (h *Handler) GetGuidance(c *fiber.Ctx) error {
	guidance, err := h.guide.Guidance(c.QueryFloat("heading", 0))
	if err != nil {
		return serviceError(err)
	}
	return ok(c, guidance)
}

// AcknowledgeArrival answers the arrival prompt
func (h *Handler) AcknowledgeArrival(c *fiber.Ctx) error {
	var req arrivalRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	choice, err := service.ParseArrivalChoice(req.Choice)
	if err != nil {
		return serviceError(err)
	}
	view, err := h.guide.AcknowledgeArrival(choice)
	if err != nil {
		return serviceError(err)
	}
	return ok(c, view)
}

// StopNavigation ends the session early
func (h *Handler) StopNavigation(c *fiber.Ctx) error {
	view, err := h.guide.StopNavigation()
	if err != nil {
		return serviceError(err)
	}
	return ok(c, view)
}

// ResumeNavigation restarts a stopped session with what was left
func (h *Handler) ResumeNavigation(c *fiber.Ctx) error {
	view, err := h.guide.ResumeNavigation()
	if err != nil {
		return serviceError(err)
	}
	return ok(c, view)
}
