package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
	"github.com/fieldsense/irrigation-control/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. The API is a
// read surface over the decision log plus the manual relay override the
// dashboard exposes.
func RegisterRoutes(app *fiber.App, st store.Store, service *irrigation.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/decisions/latest", func(c *fiber.Ctx) error {
		decision, err := st.LatestDecision(c.Context())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no decisions recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch latest decision")
		}
		return c.JSON(decision)
	})

	v1.Get("/decisions/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		decisions, err := st.DecisionsInRange(c.Context(), req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no decisions in requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch decision history")
		}

		return c.JSON(fiber.Map{
			"from":      req.From,
			"to":        req.To,
			"decisions": decisions,
		})
	})

	v1.Get("/relay", func(c *fiber.Ctx) error {
		cmd, err := st.RelayCommand(c.Context())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no relay command issued yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch relay command")
		}
		return c.JSON(cmd)
	})

	v1.Post("/relay/override", func(c *fiber.Ctx) error {
		var req overrideRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		latest, err := st.LatestDecision(c.Context())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusConflict, "no decision to override yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch latest decision")
		}

		// Manual control is only available while the system is in a
		// plain OFF/ON state; NO_ADJUSTMENT and ALERT stay hands-off.
		if latest.Class != irrigation.ClassOff && latest.Class != irrigation.ClassOn {
			return fiber.NewError(fiber.StatusConflict,
				"manual control is disabled for status "+latest.Class.String())
		}

		class := irrigation.ClassOff
		if req.Command == string(irrigation.RelayOn) {
			class = irrigation.ClassOn
		}

		decision := irrigation.Decision{
			ID:         uuid.NewString(),
			Class:      class,
			Reading:    latest.Reading,
			ProducedAt: time.Now().UTC(),
		}

		if err := st.AppendDecision(c.Context(), decision); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to record override decision")
		}
		if cerr := service.Dispatch(c.Context(), decision); cerr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, cerr.Error())
		}

		return c.JSON(decision)
	})
}

// overrideRequest is the manual relay override body.
type overrideRequest struct {
	Command string `json:"command" validate:"required,oneof=ON OFF"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
