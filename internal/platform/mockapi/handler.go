package mockapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/domain/turno"
)

// Handler serves the REST contract over a Store.
type Handler struct {
	store  *Store
	issuer *Issuer
	logger zerolog.Logger
	// SingleObject answers GET /turnos/profesional/:id with a bare object
	// when there is exactly one match, like the production service does.
	SingleObject bool
}

func NewHandler(store *Store, issuer *Issuer, logger zerolog.Logger) *Handler {
	return &Handler{store: store, issuer: issuer, logger: logger, SingleObject: true}
}

// RegisterRoutes mounts the public auth routes on g and everything else
// behind bearer authentication.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/auth/login", h.Login)
	g.POST("/auth/register", h.Register)

	api := g.Group("", h.issuer.Middleware())
	api.GET("/profesionales", h.ListProfessionals)
	api.GET("/pacientes/:id", h.GetPatient)
	api.GET("/turnos/paciente/:id", h.ListByPatient)
	api.GET("/turnos/profesional/:id", h.ListByProfessional)
	api.POST("/turnos", h.CreateTurno)
	api.PUT("/turnos/:id", h.UpdateTurno)
}

// Login handles POST /auth/login.
func (h *Handler) Login(c echo.Context) error {
	var req identity.Credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ident, err := h.store.Authenticate(req.Role, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Credenciales incorrectas")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.respondWithToken(c, http.StatusOK, ident)
}

type registerRequest struct {
	Role         identity.Role `json:"role"`
	Nombre       string        `json:"nombre"`
	Apellido     string        `json:"apellido"`
	DNI          string        `json:"dni"`
	Especialidad string        `json:"especialidad"`
	Email        string        `json:"email"`
	Password     string        `json:"password"`
}

// Register handles POST /auth/register.
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var (
		ident identity.Identity
		err   error
	)
	switch req.Role {
	case identity.RolePatient:
		var d identity.PatientDraft
		if d, err = identity.NewPatientDraft(req.Nombre, req.Apellido, req.DNI, req.Email, req.Password); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		var p identity.Patient
		p, err = h.store.AddPatient(identity.Patient{
			FirstName: d.FirstName,
			LastName:  d.LastName,
			DNI:       d.DNI,
			Email:     d.Email(),
		}, d.Password)
		ident = identity.NewPatientIdentity(p, "")
	case identity.RoleProfessional:
		var d identity.ProfessionalDraft
		if d, err = identity.NewProfessionalDraft(req.Nombre, req.Apellido, req.Especialidad, req.Email, req.Password); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		var p identity.Professional
		p, err = h.store.AddProfessional(identity.Professional{
			FirstName:  d.FirstName,
			LastName:   d.LastName,
			Specialty:  d.Specialty,
			Email:      d.Email(),
			PatientIDs: []string{},
			Active:     true,
		}, d.Password)
		ident = identity.NewProfessionalIdentity(p, "")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, identity.ErrInvalidRole.Error())
	}
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.logger.Info().Str("user_id", ident.ID).Str("role", string(ident.Role)).Msg("account registered")
	return h.respondWithToken(c, http.StatusCreated, ident)
}

func (h *Handler) respondWithToken(c echo.Context, status int, ident identity.Identity) error {
	token, err := h.issuer.Issue(ident)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	ident.Token = token
	return c.JSON(status, ident)
}

// ListProfessionals handles GET /profesionales.
func (h *Handler) ListProfessionals(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Professionals())
}

// GetPatient handles GET /pacientes/:id.
func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.store.Patient(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

// ListByPatient handles GET /turnos/paciente/:id.
func (h *Handler) ListByPatient(c echo.Context) error {
	id := c.Param("id")
	return c.JSON(http.StatusOK, h.store.TurnosFor(func(t turno.Turno) bool {
		return t.PatientID == id
	}))
}

// ListByProfessional handles GET /turnos/profesional/:id.
func (h *Handler) ListByProfessional(c echo.Context) error {
	id := c.Param("id")
	list := h.store.TurnosFor(func(t turno.Turno) bool {
		return t.ProfessionalID == id
	})
	if h.SingleObject && len(list) == 1 {
		return c.JSON(http.StatusOK, list[0])
	}
	return c.JSON(http.StatusOK, list)
}

// CreateTurno handles POST /turnos. Patients may only book for themselves.
func (h *Handler) CreateTurno(c echo.Context) error {
	var req turno.Turno
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if role, _ := c.Get("user_role").(identity.Role); role == identity.RolePatient {
		if uid, _ := c.Get("user_id").(string); uid != req.PatientID {
			return echo.NewHTTPError(http.StatusForbidden, "cannot book for another patient")
		}
	}

	created, err := h.store.CreateTurno(req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTurno):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrPatientNotFound), errors.Is(err, ErrProfessionalNotFound):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateTurno handles PUT /turnos/:id. Only the owning professional may
// change the estado.
func (h *Handler) UpdateTurno(c echo.Context) error {
	var req turno.Update
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid estado")
	}

	id := c.Param("id")
	current, err := h.store.Turno(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	role, _ := c.Get("user_role").(identity.Role)
	uid, _ := c.Get("user_id").(string)
	if role != identity.RoleProfessional || uid != current.ProfessionalID {
		return echo.NewHTTPError(http.StatusForbidden, "only the assigned professional may update this turno")
	}

	updated, err := h.store.SetTurnoStatus(id, req.Status)
	if err != nil {
		if errors.Is(err, ErrTurnoNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}
